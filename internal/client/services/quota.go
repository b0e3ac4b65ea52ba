package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/quota"
)

// localOwner is the subject of every meter kept on the device.
const localOwner = "local"

// metadataStore keeps quota states as JSON under "quota:<action>" keys.
type metadataStore struct {
	repo metadata.Repository
}

func quotaKey(action quota.Action) string {
	return "quota:" + string(action)
}

func (s *metadataStore) Load(ctx context.Context, _ string, action quota.Action) (quota.State, error) {
	raw, err := s.repo.Get(ctx, quotaKey(action))
	if err != nil {
		return quota.State{}, err
	}
	if raw == nil {
		return quota.State{}, common.ErrorNotFound
	}

	var st quota.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return quota.State{}, fmt.Errorf("corrupt quota state %s: %w", action, err)
	}
	return st, nil
}

func (s *metadataStore) Save(ctx context.Context, _ string, action quota.Action, st quota.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, quotaKey(action), raw)
}

// QuotaService meters actions of this device. The server keeps its own
// authoritative meters; the local one only spares requests that would be
// refused anyway.
type QuotaService interface {
	Check(ctx context.Context, action quota.Action) (quota.Admission, error)
	Consume(ctx context.Context, action quota.Action) (quota.Admission, error)
	Usage(ctx context.Context, action quota.Action) (quota.Usage, error)
}

type quotaService struct {
	gate    *quota.Gate
	subject quota.Subject
}

func NewQuotaService(repo metadata.Repository, plan quota.Plan, timeZone string, logger logging.Logger) QuotaService {
	if !plan.Valid() {
		plan = quota.PlanFree
	}
	return &quotaService{
		gate:    quota.NewGate(&metadataStore{repo: repo}, nil, logger),
		subject: quota.Subject{Owner: localOwner, Plan: plan, TimeZone: timeZone},
	}
}

func (s *quotaService) Check(ctx context.Context, action quota.Action) (quota.Admission, error) {
	return s.gate.Check(ctx, s.subject, action)
}

func (s *quotaService) Consume(ctx context.Context, action quota.Action) (quota.Admission, error) {
	return s.gate.Consume(ctx, s.subject, action)
}

func (s *quotaService) Usage(ctx context.Context, action quota.Action) (quota.Usage, error) {
	return s.gate.Usage(ctx, s.subject, action)
}
