package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// FromMQTT stores an entry published by a device or companion app. The
// payload is the JSON form of EntryInput.
func (s *GrowthService) FromMQTT(ctx context.Context, sess *domain.Session, topic string, payload []byte) (domain.GrowthRecord, error) {
	var in EntryInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return domain.GrowthRecord{}, fmt.Errorf("decode %s payload: %w", topic, err)
	}
	res, err := s.SubmitEntry(ctx, sess, in)
	if err != nil && res.Record.ID == 0 {
		return domain.GrowthRecord{}, err
	}
	// the entry is stored even if the refresh after it failed
	return res.Record, nil
}
