package utils

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gocql/gocql"

	"perfumeria_back_end/internal/models"
)

// Actions d'audit
const (
	ActionProductCreate = "product.create"
	ActionProductUpdate = "product.update"
	ActionProductDelete = "product.delete"
	ActionOrderCreate   = "order.create"
	ActionOrderStatus   = "order.status"
	ActionProfileUpdate = "profile.update"
	ActionAccountDelete = "account.delete"
)

// Ressources d'audit
const (
	ResourceProduct = "product"
	ResourceOrder   = "order"
	ResourceProfile = "profile"
)

type AuditWriter interface {
	InsertAuditLog(ctx context.Context, a models.AuditLog) error
}

// Actor identifie l'auteur d'une action (renseigné par le handler).
type Actor struct {
	UserID string
	IP     string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// Auditor écrit les logs d'audit en arrière-plan. Un échec d'écriture
// n'interrompt jamais l'action auditée.
type Auditor struct {
	w   AuditWriter
	now func() time.Time
}

func NewAuditor(w AuditWriter) *Auditor {
	return &Auditor{w: w, now: time.Now}
}

// LogAction enregistre une action réussie.
func (a *Auditor) LogAction(ctx context.Context, action, resource, resourceID string, oldValue, newValue any) {
	a.record(ctx, action, resource, resourceID, oldValue, newValue, true, "")
}

// LogFailedAction enregistre une action échouée.
func (a *Auditor) LogFailedAction(ctx context.Context, action, resource, resourceID, errorMsg string) {
	a.record(ctx, action, resource, resourceID, nil, nil, false, errorMsg)
}

func (a *Auditor) record(ctx context.Context, action, resource, resourceID string, oldValue, newValue any, success bool, errorMsg string) {
	if a == nil || a.w == nil {
		return
	}
	actor := ActorFrom(ctx)
	entry := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     actor.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   marshalValue(oldValue),
		NewValue:   marshalValue(newValue),
		IPAddress:  actor.IP,
		Success:    success,
		ErrorMsg:   errorMsg,
		Timestamp:  a.now().UTC(),
	}
	go func() {
		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.w.InsertAuditLog(wctx, entry); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

func marshalValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
