package queue

import "strings"

// Eventos de ciclo de vida que o LifterLMS dispara e nós traduzimos
// em chamadas no Omnisend
const (
	EventUserRegistered    = "user.registered"
	EventUserUpdated       = "user.updated"
	EventCourseEnrolled    = "course.enrolled"
	EventCourseRemoved     = "course.removed"
	EventMembershipAdded   = "membership.added"
	EventMembershipRemoved = "membership.removed"
)

// LifecycleEvent é a mensagem que trafega na fila: um evento do LMS já
// sanitizado pelo webhook handler, pronto para virar exatamente uma
// operação no OmnisendService.
type LifecycleEvent struct {
	ID    string `json:"id"`
	Event string `json:"event"`

	UserID int    `json:"user_id"`
	Email  string `json:"email"`

	CourseID     int `json:"course_id,omitempty"`
	MembershipID int `json:"membership_id,omitempty"`

	// Campos do formulário (registro/perfil). Flags de consentimento
	// entram aqui pela presença da chave.
	Fields map[string]string `json:"fields,omitempty"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateLifecycleEvent confere o mínimo antes do evento entrar na fila
func ValidateLifecycleEvent(ev LifecycleEvent) []ValidationError {
	var errors []ValidationError

	switch ev.Event {
	case EventUserRegistered, EventUserUpdated:
		if len(ev.Fields) == 0 {
			errors = append(errors, ValidationError{"fields", "is required"})
		}
	case EventCourseEnrolled, EventCourseRemoved:
		if ev.CourseID <= 0 {
			errors = append(errors, ValidationError{"course_id", "is required"})
		}
	case EventMembershipAdded, EventMembershipRemoved:
		if ev.MembershipID <= 0 {
			errors = append(errors, ValidationError{"membership_id", "is required"})
		}
	default:
		errors = append(errors, ValidationError{"event", "is unknown"})
	}

	if ev.Event != EventUserRegistered && strings.TrimSpace(ev.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	}

	return errors
}
