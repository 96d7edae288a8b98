package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-wallet-verify/internal/domain"
)

// v is the package-level singleton validator. Custom type registrations are
// made in init(), before the first call to Struct.
var v = validator.New()

func init() {
	// wallet_type: field must be a member of the closed chain-type set.
	_ = v.RegisterValidation("wallet_type", func(fl validator.FieldLevel) bool {
		return domain.WalletType(fl.Field().String()).Valid()
	})
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
