package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/omnisend-sync/internal/infra/http/middleware"
	"github.com/xavierca1/omnisend-sync/internal/mapper"
	"github.com/xavierca1/omnisend-sync/internal/usecase"
)

// ContactSyncService é o contrato com o serviço que fala com o Omnisend
type ContactSyncService interface {
	CreateContact(ctx context.Context, fields mapper.FormFields) (*usecase.TrackerData, error)
	UpdateContact(ctx context.Context, fields mapper.FormFields, currentEmail string)
	ApplyEnrollmentChange(ctx context.Context, email string, courseID int, action string) error
	ApplyMembershipChange(ctx context.Context, email string, membershipID int, action string) error
}

type Worker struct {
	Channel *amqp.Channel
	Service ContactSyncService
}

func NewWorker(ch *amqp.Channel, service ContactSyncService) *Worker {
	return &Worker{
		Channel: ch,
		Service: service,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var ev LifecycleEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Printf("❌ [WORKER] JSON inválido: %s", err)
				// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			log.Printf("⚙️ [WORKER] Processando %s para %s", ev.Event, ev.Email)

			if err := w.processEvent(context.Background(), ev); err != nil {
				log.Printf("❌ [WORKER] Falha no sync (%s): %s", ev.Event, err)
				middleware.RecordContactSync(ev.Event, "error")
				if usecase.IsTechnicalError(err) {
					middleware.RecordIntegrationError("omnisend")
				}

				// Sem retry: rejeita sem requeue para a mensagem ir
				// direto para a DLQ, onde um operador decide o replay.
				d.Nack(false, false)
			} else {
				middleware.RecordContactSync(ev.Event, "ok")
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	<-forever
}

// processEvent: cada tipo de evento vira exatamente uma operação do
// serviço. Nada de regra de negócio aqui além do roteamento.
func (w *Worker) processEvent(ctx context.Context, ev LifecycleEvent) error {
	switch ev.Event {
	case EventUserRegistered:
		tracker, err := w.Service.CreateContact(ctx, mapper.FormFields(ev.Fields))
		if err != nil {
			return err
		}
		if tracker != nil {
			log.Printf("✅ [WORKER] Contato criado: %s", tracker.Email)
		}
		return nil

	case EventUserUpdated:
		// Fire-and-forget por desenho: falha de update é silenciosa
		w.Service.UpdateContact(ctx, mapper.FormFields(ev.Fields), ev.Email)
		return nil

	case EventCourseEnrolled:
		return w.Service.ApplyEnrollmentChange(ctx, ev.Email, ev.CourseID, mapper.ActionAdd)

	case EventCourseRemoved:
		return w.Service.ApplyEnrollmentChange(ctx, ev.Email, ev.CourseID, mapper.ActionRemove)

	case EventMembershipAdded:
		return w.Service.ApplyMembershipChange(ctx, ev.Email, ev.MembershipID, mapper.ActionAdd)

	case EventMembershipRemoved:
		return w.Service.ApplyMembershipChange(ctx, ev.Email, ev.MembershipID, mapper.ActionRemove)

	default:
		// Evento que não conhecemos sai da fila com ACK mesmo —
		// requeue não vai torná-lo conhecido
		log.Printf("⚠️ [WORKER] Evento desconhecido: %s. Apenas logando.", ev.Event)
		return nil
	}
}
