package sns

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-wallet-verify/internal/config"
	"github.com/go-wallet-verify/internal/domain"
)

// Event is the message published for every terminal session transition.
// The interactive front-end consumes these to update its prompt message;
// end clients still learn the outcome by polling the status endpoint.
type Event struct {
	Kind          string            `json:"kind"` // "completed" | "failed"
	SessionID     string            `json:"session_id"`
	UserID        string            `json:"user_id"`
	Username      string            `json:"username"`
	WalletType    domain.WalletType `json:"wallet_type"`
	WalletAddress string            `json:"wallet_address,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Origin        *domain.OriginRef `json:"origin,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// Notifier publishes verification outcomes to an SNS topic.
type Notifier struct {
	client   *sns.Client
	topicARN string
}

func NewNotifier(cfg *config.Config) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Notifier{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

// OnCompleted publishes a completion event. Publish failures are logged and
// swallowed: the binding is already durable and the status endpoint remains
// the source of truth.
func (n *Notifier) OnCompleted(ctx context.Context, sess *domain.VerificationSession, address string) {
	n.publish(ctx, Event{
		Kind:          "completed",
		SessionID:     sess.ID,
		UserID:        sess.UserID,
		Username:      sess.Username,
		WalletType:    sess.WalletType,
		WalletAddress: address,
		Origin:        sess.Origin,
		OccurredAt:    time.Now().UTC(),
	})
}

// OnFailed publishes a terminal-failure event.
func (n *Notifier) OnFailed(ctx context.Context, sess *domain.VerificationSession, reason string) {
	n.publish(ctx, Event{
		Kind:       "failed",
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		Username:   sess.Username,
		WalletType: sess.WalletType,
		Reason:     reason,
		Origin:     sess.Origin,
		OccurredAt: time.Now().UTC(),
	})
}

func (n *Notifier) publish(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal notification event", "session_id", ev.SessionID, "err", err)
		return
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		slog.Error("publish notification event", "session_id", ev.SessionID, "kind", ev.Kind, "err", err)
	}
}
