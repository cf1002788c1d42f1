package core

import (
	"context"
	"fmt"

	"github.com/edvin/hosting/internal/model"
)

// ConsentService implements flow.ConsentRecorder against the
// consent_records table.
type ConsentService struct {
	db DB
}

func NewConsentService(db DB) *ConsentService {
	return &ConsentService{db: db}
}

func (s *ConsentService) Find(ctx context.Context, clientID, userID string) (*model.ConsentRecord, error) {
	var rec model.ConsentRecord
	err := s.db.QueryRow(ctx,
		`SELECT client_id, user_id, scope, expires_at, created_at
		   FROM consent_records WHERE client_id = $1 AND user_id = $2`,
		clientID, userID,
	).Scan(&rec.ClientID, &rec.UserID, &rec.Scope, &rec.ExpiresAt, &rec.CreatedAt)
	if err != nil {
		return nil, nil
	}
	return &rec, nil
}

func (s *ConsentService) Save(ctx context.Context, rec *model.ConsentRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO consent_records (client_id, user_id, scope, expires_at, created_at)
		 VALUES ($1,$2,$3,$4,now())
		 ON CONFLICT (client_id, user_id) DO UPDATE SET scope = $3, expires_at = $4`,
		rec.ClientID, rec.UserID, rec.Scope, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save consent record: %w", err)
	}
	return nil
}
