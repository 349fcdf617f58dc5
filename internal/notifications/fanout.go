package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/expo"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/types"
)

type agentDirectory interface {
	ListEligible(ctx context.Context) ([]models.AgentProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.AgentProfile, error)
}

type adminDirectory interface {
	ListAdmins(ctx context.Context) ([]models.User, error)
}

type pushSender interface {
	Send(ctx context.Context, messages []expo.Message) ([]expo.Ticket, error)
}

type emailSender interface {
	Enabled() bool
	Send(ctx context.Context, to []string, subject, body string) error
}

// Fanout delivers push, email, and inbox entries for domain events. Every
// delivery is best-effort: failures are collected, logged, and returned as a
// single aggregated error that callers are expected to swallow.
type Fanout struct {
	repo       Repository
	agents     agentDirectory
	admins     adminDirectory
	push       pushSender
	mail       emailSender
	adminEmail string
	logger     *logger.Logger
}

// NewFanout wires the delivery pipeline. Push and mail senders are optional;
// a nil sender skips that channel.
func NewFanout(
	repo Repository,
	agents agentDirectory,
	admins adminDirectory,
	push pushSender,
	mail emailSender,
	adminEmail string,
	logg *logger.Logger,
) (*Fanout, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if agents == nil {
		return nil, fmt.Errorf("agent directory required")
	}
	if admins == nil {
		return nil, fmt.Errorf("admin directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Fanout{
		repo:       repo,
		agents:     agents,
		admins:     admins,
		push:       push,
		mail:       mail,
		adminEmail: adminEmail,
		logger:     logg,
	}, nil
}

// HandoffOpened tells every eligible agent a paid handoff entered the queue
// and copies the ops mailbox.
func (f *Fanout) HandoffOpened(ctx context.Context, handoff *models.Handoff) error {
	title := "New handoff in the queue"
	body := fmt.Sprintf("Handoff %s from %s is ready to claim.", handoff.Token, handoff.CustomerName)
	data := types.JSONMap{"handoff_id": handoff.ID.String(), "token": handoff.Token}

	err := f.broadcastToEligible(ctx, enums.NotificationTypeHandoffAvailable, title, body, data)
	err = multierr.Append(err, f.emailAdmin(ctx, title, body))
	return f.logged(ctx, "handoff opened fan-out", err)
}

// HandoffPaid tells the claiming agent the balance settled and lands the
// confirmation in every admin's inbox plus the ops mailbox.
func (f *Fanout) HandoffPaid(ctx context.Context, handoff *models.Handoff) error {
	title := "Handoff fully paid"
	body := fmt.Sprintf("Handoff %s is settled and ready to ship.", handoff.Token)
	data := types.JSONMap{"handoff_id": handoff.ID.String(), "token": handoff.Token}

	var err error
	if handoff.ClaimedBy != nil {
		if _, createErr := f.repo.Create(ctx, &models.Notification{
			RecipientID: *handoff.ClaimedBy,
			Type:        enums.NotificationTypeHandoffPaid,
			Title:       title,
			Body:        body,
			Data:        &data,
		}); createErr != nil {
			err = multierr.Append(err, fmt.Errorf("write agent inbox: %w", createErr))
		}
		if f.push != nil {
			profile, findErr := f.agents.FindByUserID(ctx, *handoff.ClaimedBy)
			if findErr != nil {
				err = multierr.Append(err, fmt.Errorf("load agent profile: %w", findErr))
			} else if profile.ExpoPushToken != nil {
				if _, pushErr := f.push.Send(ctx, []expo.Message{{
					To:    *profile.ExpoPushToken,
					Title: title,
					Body:  body,
					Data:  data,
				}}); pushErr != nil {
					err = multierr.Append(err, fmt.Errorf("push to agent: %w", pushErr))
				}
			}
		}
	}

	admins, listErr := f.admins.ListAdmins(ctx)
	if listErr != nil {
		err = multierr.Append(err, fmt.Errorf("list admins: %w", listErr))
	} else {
		var rows []models.Notification
		for _, admin := range admins {
			rows = append(rows, models.Notification{
				RecipientID: admin.ID,
				Type:        enums.NotificationTypeHandoffPaid,
				Title:       title,
				Body:        body,
				Data:        &data,
			})
		}
		if batchErr := f.repo.CreateBatch(ctx, rows); batchErr != nil {
			err = multierr.Append(err, fmt.Errorf("write admin inbox: %w", batchErr))
		}
	}
	err = multierr.Append(err, f.emailAdmin(ctx, title, body))
	return f.logged(ctx, "handoff paid fan-out", err)
}

// HandoffStale re-notifies eligible agents about a handoff nobody claimed.
func (f *Fanout) HandoffStale(ctx context.Context, handoff *models.Handoff) error {
	title := "Handoff still unclaimed"
	body := fmt.Sprintf("Handoff %s has been waiting since %s.", handoff.Token, handoff.CreatedAt.Format("Jan 2 15:04"))
	data := types.JSONMap{"handoff_id": handoff.ID.String(), "token": handoff.Token}

	err := f.broadcastToEligible(ctx, enums.NotificationTypeHandoffStale, title, body, data)
	return f.logged(ctx, "stale handoff fan-out", err)
}

// ReorderPendingAdmin lands a routing request in every admin's inbox and the
// ops mailbox.
func (f *Fanout) ReorderPendingAdmin(ctx context.Context, reorder *models.ReorderRequest) error {
	title := "Reorder needs routing"
	body := fmt.Sprintf("A paid reorder of NGN %s is waiting for an agent.", koboToNaira(reorder.AmountKobo))
	data := types.JSONMap{"reorder_id": reorder.ID.String()}

	var err error
	admins, listErr := f.admins.ListAdmins(ctx)
	if listErr != nil {
		err = multierr.Append(err, fmt.Errorf("list admins: %w", listErr))
	} else {
		var rows []models.Notification
		for _, admin := range admins {
			rows = append(rows, models.Notification{
				RecipientID: admin.ID,
				Type:        enums.NotificationTypeReorderPendingAdmin,
				Title:       title,
				Body:        body,
				Data:        &data,
			})
		}
		if batchErr := f.repo.CreateBatch(ctx, rows); batchErr != nil {
			err = multierr.Append(err, fmt.Errorf("write admin inbox: %w", batchErr))
		}
	}
	err = multierr.Append(err, f.emailAdmin(ctx, title, body))
	return f.logged(ctx, "reorder pending fan-out", err)
}

// ReorderAssigned notifies the agent who received the routed reorder.
func (f *Fanout) ReorderAssigned(ctx context.Context, reorder *models.ReorderRequest) error {
	if reorder.AssignedAgentID == nil {
		return nil
	}
	title := "Reorder assigned to you"
	body := fmt.Sprintf("A paid reorder of NGN %s is on your desk.", koboToNaira(reorder.AmountKobo))
	data := types.JSONMap{"reorder_id": reorder.ID.String(), "handoff_id": reorder.NewHandoffID.String()}

	var err error
	if _, createErr := f.repo.Create(ctx, &models.Notification{
		RecipientID: *reorder.AssignedAgentID,
		Type:        enums.NotificationTypeReorderAssigned,
		Title:       title,
		Body:        body,
		Data:        &data,
	}); createErr != nil {
		err = multierr.Append(err, fmt.Errorf("write agent inbox: %w", createErr))
	}

	if f.push != nil {
		profile, findErr := f.agents.FindByUserID(ctx, *reorder.AssignedAgentID)
		if findErr != nil {
			err = multierr.Append(err, fmt.Errorf("load agent profile: %w", findErr))
		} else if profile.ExpoPushToken != nil {
			if _, pushErr := f.push.Send(ctx, []expo.Message{{
				To:    *profile.ExpoPushToken,
				Title: title,
				Body:  body,
				Data:  data,
			}}); pushErr != nil {
				err = multierr.Append(err, fmt.Errorf("push to agent: %w", pushErr))
			}
		}
	}
	return f.logged(ctx, "reorder assigned fan-out", err)
}

func (f *Fanout) broadcastToEligible(ctx context.Context, notifType enums.NotificationType, title, body string, data types.JSONMap) error {
	agents, err := f.agents.ListEligible(ctx)
	if err != nil {
		return fmt.Errorf("list eligible agents: %w", err)
	}

	var combined error
	var rows []models.Notification
	var messages []expo.Message
	var emails []string
	for _, agent := range agents {
		rows = append(rows, models.Notification{
			RecipientID: agent.UserID,
			Type:        notifType,
			Title:       title,
			Body:        body,
			Data:        &data,
		})
		if agent.ExpoPushToken != nil {
			messages = append(messages, expo.Message{
				To:    *agent.ExpoPushToken,
				Title: title,
				Body:  body,
				Data:  data,
			})
		}
		if agent.Email != "" {
			emails = append(emails, agent.Email)
		}
	}

	if err := f.repo.CreateBatch(ctx, rows); err != nil {
		combined = multierr.Append(combined, fmt.Errorf("write agent inbox: %w", err))
	}
	if f.push != nil && len(messages) > 0 {
		if _, err := f.push.Send(ctx, messages); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("push to agents: %w", err))
		}
	}
	if f.mail != nil && f.mail.Enabled() && len(emails) > 0 {
		if err := f.mail.Send(ctx, emails, title, body); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("email agents: %w", err))
		}
	}
	return combined
}

func (f *Fanout) emailAdmin(ctx context.Context, subject, body string) error {
	if f.mail == nil || !f.mail.Enabled() || f.adminEmail == "" {
		return nil
	}
	if err := f.mail.Send(ctx, []string{f.adminEmail}, subject, body); err != nil {
		return fmt.Errorf("email admin: %w", err)
	}
	return nil
}

func (f *Fanout) logged(ctx context.Context, op string, err error) error {
	if err != nil {
		f.logger.Error(ctx, op+" partially failed", err)
	}
	return err
}

func koboToNaira(kobo int64) string {
	return decimal.NewFromInt(kobo).Div(decimal.NewFromInt(100)).StringFixed(2)
}
