package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"oficina-backend/models"
	"oficina-backend/repository"
	"oficina-backend/utils"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageSender delivers one text message and returns the provider id.
type MessageSender interface {
	Send(ctx context.Context, from, to, body string) (string, error)
}

type TwilioSender struct {
	client *twilio.RestClient
}

func NewTwilioSender(accountSID, authToken string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
	}
}

// Send returns when the API call completes or ctx is done, whichever comes
// first. The client has no per-call context, so an abandoned call finishes
// in the background.
func (s *TwilioSender) Send(ctx context.Context, from, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	type result struct {
		sid string
		err error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := s.client.Api.CreateMessage(params)
		if err != nil || resp.Sid == nil {
			done <- result{err: err}
			return
		}
		done <- result{sid: *resp.Sid}
	}()

	select {
	case r := <-done:
		return r.sid, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Senders holds the configured origin numbers. Either may be empty.
type Senders struct {
	SMSFrom      string
	WhatsAppFrom string
}

// DefaultSendTimeout bounds one delivery, lookups included.
const DefaultSendTimeout = 30 * time.Second

// NotificationService tells customers their vehicle is ready. Every attempt
// is recorded in notification_logs.
type NotificationService struct {
	db      *gorm.DB
	log     *zap.Logger
	sender  MessageSender
	from    Senders
	metrics *Metrics
	now     func() time.Time
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotificationService(db *gorm.DB, log *zap.Logger, sender MessageSender, from Senders, metrics *Metrics) *NotificationService {
	return &NotificationService{
		db:      db,
		log:     log,
		sender:  sender,
		from:    from,
		metrics: metrics,
		now:     time.Now,
		timeout: DefaultSendTimeout,
	}
}

// Wait blocks until every delivery started by OrderFinalized has finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// RenderMessage fills the template placeholders.
func RenderMessage(tmpl string, customer models.Customer, vehicle models.Vehicle, order models.WorkOrder) string {
	vehicleLabel := strings.TrimSpace(vehicle.Make + " " + vehicle.Model)
	if vehicle.Plate != "" {
		vehicleLabel += " (" + vehicle.Plate + ")"
	}
	return strings.NewReplacer(
		"[CustomerName]", customer.Name,
		"[Vehicle]", vehicleLabel,
		"[Total]", order.Total.StringFixed(2),
	).Replace(tmpl)
}

// channelFor picks WhatsApp for E.164 numbers when a WhatsApp sender exists,
// SMS otherwise.
func (s *NotificationService) channelFor(phone string) (channel, from, to string, ok bool) {
	if strings.HasPrefix(phone, "+") && s.from.WhatsAppFrom != "" {
		return models.ChannelWhatsApp, "whatsapp:" + s.from.WhatsAppFrom, "whatsapp:" + phone, true
	}
	if s.from.SMSFrom != "" {
		return models.ChannelSMS, s.from.SMSFrom, phone, true
	}
	return "", "", "", false
}

// OrderFinalized sends the "order finalized" message to the order's customer
// in the background, so the request that finalized the order never waits on
// the provider. Failures are logged and recorded, never returned.
func (s *NotificationService) OrderFinalized(ctx context.Context, tenantID, orderID uuid.UUID) {
	if s.sender == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		s.deliver(ctx, tenantID, orderID)
	}()
}

func (s *NotificationService) deliver(ctx context.Context, tenantID, orderID uuid.UUID) {
	log := s.log.With(zap.String("oficina_id", tenantID.String()), zap.String("order_id", orderID.String()))
	t, err := repository.ForTenant(s.db, tenantID)
	if err != nil {
		log.Warn("notification skipped", zap.Error(err))
		return
	}

	var (
		order    models.WorkOrder
		customer models.Customer
		vehicle  models.Vehicle
	)
	if err := t.First(ctx, &order, orderID); err != nil {
		log.Error("load order for notification", zap.Error(err))
		return
	}
	if err := t.First(ctx, &customer, order.CustomerID); err != nil {
		log.Error("load customer for notification", zap.Error(err))
		return
	}
	if err := t.First(ctx, &vehicle, order.VehicleID); err != nil {
		log.Error("load vehicle for notification", zap.Error(err))
		return
	}
	if strings.TrimSpace(customer.Phone) == "" {
		log.Debug("customer has no phone; notification skipped")
		return
	}

	tmpl, err := s.Template(ctx, tenantID)
	if err != nil {
		log.Error("load notification template", zap.Error(err))
		return
	}
	if !tmpl.IsActive {
		return
	}

	channel, from, to, ok := s.channelFor(customer.Phone)
	if !ok {
		log.Warn("no sender number configured; notification skipped")
		return
	}

	message := RenderMessage(tmpl.Message, customer, vehicle, order)
	status, errorMsg := models.NotificationSent, ""
	sid, err := s.sender.Send(ctx, from, to, message)
	if err != nil {
		log.Error("failed to send notification", zap.String("channel", channel), zap.Error(err))
		status, errorMsg = models.NotificationFailed, err.Error()
	} else {
		log.Info("notification sent", zap.String("channel", channel), zap.String("sid", sid))
	}
	s.metrics.Notification(channel, status)

	entry := &models.NotificationLog{
		CustomerID:   customer.ID,
		WorkOrderID:  &order.ID,
		Event:        models.EventOrderFinalized,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       s.now().UTC(),
	}
	// The attempt is recorded even when the send ran out of time.
	if err := t.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Error("failed to record notification", zap.Error(err))
	}
}

// Template returns the workshop's "order finalized" template, or an unsaved
// default when none was configured.
func (s *NotificationService) Template(ctx context.Context, tenantID uuid.UUID) (*models.NotificationTemplate, error) {
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}
	var tmpl models.NotificationTemplate
	err = t.Model(ctx, &models.NotificationTemplate{}).
		Where("event = ?", models.EventOrderFinalized).
		First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotificationTemplate{
			Tenant:   models.Tenant{TenantID: tenantID},
			Event:    models.EventOrderFinalized,
			Message:  models.DefaultOrderFinalizedMessage,
			IsActive: true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	return &tmpl, nil
}

// SaveTemplate creates or replaces the workshop's template.
func (s *NotificationService) SaveTemplate(ctx context.Context, tenantID uuid.UUID, message string, active bool) (*models.NotificationTemplate, error) {
	if strings.TrimSpace(message) == "" {
		return nil, utils.ValidationError("message is required")
	}
	current, err := s.Template(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	t, err := bindTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	current.Message = message
	current.IsActive = active
	if current.ID == uuid.Nil {
		err = t.Create(ctx, current)
	} else {
		err = t.Save(ctx, current)
	}
	if err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return current, nil
}
