package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"lab-request-api/config"
	"lab-request-api/models"
)

// NotificationService resolves notification rules for an event and fans the
// result out to the in-app and email channels. Every failure inside the
// dispatcher is logged and swallowed: notification problems must never fail
// the business transaction that triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify dispatches eventKey to every matching recipient and returns the
// in-app / email counts (emails counted on enqueue, not delivery).
//
// When recipients is non-empty it overrides rule-based targeting and exactly
// that user set is notified. Otherwise recipients are the users of every role
// with at least one active rule for the event, with company-scoped roles
// restricted to the triggering request's company.
func (s *NotificationService) Notify(eventKey string, requestID *uint, eventData map[string]string, recipients []uint) (int, int) {
	if eventData == nil {
		eventData = map[string]string{}
	}

	var eventType models.NotificationEventType
	if err := s.db.Where("event_key = ?", eventKey).First(&eventType).Error; err != nil {
		log.Printf("notify: unknown event type %q", eventKey)
		return 0, 0
	}

	link := requestLink(requestID, eventData["request_number"])
	eventData["request_link"] = link

	rules, err := s.activeRules(eventType.EventTypeID)
	if err != nil {
		log.Printf("notify: loading rules for %s: %v", eventKey, err)
		return 0, 0
	}

	users, err := s.targetUsers(rules, requestID, recipients)
	if err != nil {
		log.Printf("notify: resolving recipients for %s: %v", eventKey, err)
		return 0, 0
	}
	if len(users) == 0 {
		return 0, 0
	}

	payload, _ := json.Marshal(eventData)
	smtpCfg := s.activeSmtpConfig()

	inAppCount := 0
	emailCount := 0
	for _, user := range users {
		rule := pickRule(rules, user.Role)
		if rule == nil {
			continue
		}

		if rule.InAppEnabled {
			n := models.Notification{
				UserID:      user.UserID,
				EventTypeID: eventType.EventTypeID,
				EventData:   payload,
				Message:     inAppMessage(eventKey, eventData),
				LinkURL:     link,
				RequestID:   requestID,
			}
			if err := s.db.Create(&n).Error; err != nil {
				log.Printf("notify: creating in-app notification for user %d: %v", user.UserID, err)
			} else {
				inAppCount++
			}
		}

		if rule.EmailEnabled && rule.EmailTemplateID != nil && smtpCfg != nil && user.Email != "" {
			var tmpl models.NotificationTemplate
			if err := s.db.First(&tmpl, "template_id = ?", *rule.EmailTemplateID).Error; err != nil {
				log.Printf("notify: template %d not found for %s", *rule.EmailTemplateID, eventKey)
				continue
			}

			subject := RenderTemplate(tmpl.Subject, eventData)
			body := RenderTemplate(tmpl.Body, eventData)
			cfg := *smtpCfg
			to := user.Email
			go func() {
				if err := config.SendMail(cfg, []string{to}, subject, body); err != nil {
					log.Printf("notify: email send failed (to=%s subject=%q): %v", to, subject, err)
				}
			}()
			emailCount++
		}
	}

	return inAppCount, emailCount
}

// activeRules loads active rules for the event, highest priority first.
func (s *NotificationService) activeRules(eventTypeID uint) ([]models.NotificationRule, error) {
	var rules []models.NotificationRule
	err := s.db.Where("event_type_id = ? AND is_active = 1", eventTypeID).
		Order("priority DESC, rule_id ASC").
		Find(&rules).Error
	return rules, err
}

// targetUsers resolves the recipient set per the dispatch contract.
func (s *NotificationService) targetUsers(rules []models.NotificationRule, requestID *uint, recipients []uint) ([]models.User, error) {
	var users []models.User

	if len(recipients) > 0 {
		err := s.db.Where("user_id IN ? AND deleted_at IS NULL", recipients).Find(&users).Error
		return users, err
	}

	if len(rules) == 0 {
		return nil, nil
	}

	roles := make([]string, 0, len(rules))
	seen := map[string]bool{}
	for _, r := range rules {
		if !seen[r.Role] {
			seen[r.Role] = true
			roles = append(roles, r.Role)
		}
	}

	if err := s.db.Where("role IN ? AND is_active = 1 AND deleted_at IS NULL", roles).Find(&users).Error; err != nil {
		return nil, err
	}

	if requestID != nil {
		var req models.LabRequest
		if err := s.db.Select("request_id, company_id").First(&req, "request_id = ?", *requestID).Error; err == nil {
			users = filterCompanyScoped(users, req.CompanyID)
		}
	}

	return users, nil
}

// filterCompanyScoped drops users in company-scoped roles whose company does
// not match the triggering request's company. Cross-company roles pass through.
func filterCompanyScoped(users []models.User, companyID uint) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if models.IsCompanyScopedRole(u.Role) {
			if u.CompanyID == nil || *u.CompanyID != companyID {
				continue
			}
		}
		out = append(out, u)
	}
	return out
}

// pickRule returns the authoritative rule for the role: the first match in a
// priority-descending list. Nil when the role has no rule for the event.
func pickRule(rules []models.NotificationRule, role string) *models.NotificationRule {
	for i := range rules {
		if rules[i].Role == role {
			return &rules[i]
		}
	}
	return nil
}

// inAppMessage renders the short in-app line for an event.
func inAppMessage(eventKey string, data map[string]string) string {
	number := data["request_number"]

	if strings.HasPrefix(eventKey, "status_to_") {
		eventKey = EventStatusChange
	}

	switch eventKey {
	case EventStatusChange:
		return fmt.Sprintf("Status change: %s → %s", number, data["new_status"])
	case EventNewRequest:
		return fmt.Sprintf("New request: %s (%s)", number, data["company_name"])
	case EventRequestApproved:
		return fmt.Sprintf("Approved: %s", number)
	case EventRequestRejected:
		return fmt.Sprintf("Rejected: %s", number)
	case EventResultsUploaded:
		return fmt.Sprintf("Results uploaded: %s", number)
	case EventDeadlineApproaching:
		return fmt.Sprintf("Deadline approaching: %s (%s days)", number, data["days_remaining"])
	case EventCommentAdded:
		return fmt.Sprintf("New comment: %s", number)
	default:
		return fmt.Sprintf("New notification: %s", number)
	}
}

// requestLink builds the frontend link for a notification. The request number
// is the canonical external identifier; the numeric id is the fallback.
func requestLink(requestID *uint, requestNumber string) string {
	base := strings.TrimRight(frontendURL(), "/")
	switch {
	case requestNumber != "":
		return fmt.Sprintf("%s/requests?number=%s", base, requestNumber)
	case requestID != nil:
		return fmt.Sprintf("%s/requests?id=%d", base, *requestID)
	default:
		return base + "/requests"
	}
}

func frontendURL() string {
	if v := strings.TrimSpace(os.Getenv("FRONTEND_URL")); v != "" {
		return v
	}
	return "http://localhost:3000"
}

// activeSmtpConfig returns the singleton SMTP config when email delivery is
// enabled, nil otherwise.
func (s *NotificationService) activeSmtpConfig() *models.SmtpConfig {
	var cfg models.SmtpConfig
	if err := s.db.Where("is_active = 1").First(&cfg).Error; err != nil {
		return nil
	}
	return &cfg
}
