package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"github.com/umutkoseali/gymnotify/internal/observability"
	"github.com/umutkoseali/gymnotify/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxGenerateBatchSize = 1000

// MessageService generates and manages message drafts. Sending is the
// DispatchService's job; this service never talks to a channel transport.
type MessageService struct {
	drafts      repository.DraftRepository
	members     repository.MemberRepository
	eligibility *EligibilityResolver
	orgName     string
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

type GenerateParams struct {
	BranchID  string
	Type      domain.MessageType
	MemberIDs []string
	Message   *string
	CreatedBy *string
}

type GenerateReport struct {
	Created []domain.MessageDraft
	Skipped int
}

func NewMessageService(
	drafts repository.DraftRepository,
	members repository.MemberRepository,
	eligibility *EligibilityResolver,
	orgName string,
	logger *zap.Logger,
) (*MessageService, error) {
	if drafts == nil {
		return nil, fmt.Errorf("draft repository is required")
	}
	if members == nil {
		return nil, fmt.Errorf("member repository is required")
	}
	if eligibility == nil {
		return nil, fmt.Errorf("eligibility resolver is required")
	}
	if strings.TrimSpace(orgName) == "" {
		orgName = "YourGym"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MessageService{
		drafts:      drafts,
		members:     members,
		eligibility: eligibility,
		orgName:     orgName,
		logger:      logger,
		now:         time.Now,
	}, nil
}

func (s *MessageService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// GenerateDrafts creates one open draft per eligible member. Members who
// already have an open draft of the same type are skipped, not errored:
// the partial unique index turns the race into a counted skip.
func (s *MessageService) GenerateDrafts(ctx context.Context, params GenerateParams) (*GenerateReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !params.Type.IsValid() {
		return nil, fmt.Errorf("%w: invalid message type %q", domain.ErrValidation, params.Type)
	}
	if len(params.MemberIDs) > maxGenerateBatchSize {
		return nil, fmt.Errorf("%w: batch size exceeds %d", domain.ErrValidation, maxGenerateBatchSize)
	}

	manualOnly := params.Type == domain.MessageTypeOffer || params.Type == domain.MessageTypeCustom
	if manualOnly && len(params.MemberIDs) == 0 {
		return nil, fmt.Errorf("%w: member ids are required for %s messages", domain.ErrValidation, params.Type)
	}
	if params.Type == domain.MessageTypeCustom && (params.Message == nil || strings.TrimSpace(*params.Message) == "") {
		return nil, fmt.Errorf("%w: message content is required for custom messages", domain.ErrValidation)
	}

	candidates, err := s.selectMembers(ctx, params)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &GenerateReport{}

	for i := range candidates {
		member := &candidates[i]

		message := ""
		if params.Type == domain.MessageTypeCustom {
			message = strings.TrimSpace(*params.Message)
		} else {
			message = RenderMessage(member, params.Type, s.orgName, now)
		}

		draft := domain.MessageDraft{
			ID:        uuid.NewString(),
			MemberID:  member.ID,
			BranchID:  member.BranchID,
			Phone:     member.Phone,
			Type:      params.Type,
			Message:   message,
			Status:    domain.DraftStatusDraft,
			CreatedBy: params.CreatedBy,
		}

		if err := s.drafts.Create(ctx, &draft); err != nil {
			if isUniqueViolationError(err) {
				report.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to create draft for member %s: %w", member.ID, err)
		}

		report.Created = append(report.Created, draft)
	}

	if s.metrics != nil {
		s.metrics.AddDraftsCreated(params.Type.String(), len(report.Created))
		s.metrics.AddDraftsSkipped(params.Type.String(), report.Skipped)
	}

	s.logger.Info("drafts generated",
		zap.String("type", params.Type.String()),
		zap.String("branchId", params.BranchID),
		zap.Int("created", len(report.Created)),
		zap.Int("skipped", report.Skipped),
	)

	return report, nil
}

func (s *MessageService) selectMembers(ctx context.Context, params GenerateParams) ([]domain.Member, error) {
	if len(params.MemberIDs) > 0 {
		if strings.TrimSpace(params.BranchID) == "" {
			return nil, fmt.Errorf("%w: branch id is required with explicit member ids", domain.ErrValidation)
		}
		members, err := s.members.GetByIDs(ctx, params.BranchID, dedupe(params.MemberIDs))
		if err != nil {
			return nil, fmt.Errorf("failed to load members: %w", err)
		}
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: no members matched the given ids", domain.ErrNotFound)
		}
		return members, nil
	}

	members, err := s.eligibility.SelectCandidates(ctx, params.BranchID, params.Type)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *MessageService) GetDraft(ctx context.Context, branchID, id string) (*domain.MessageDraft, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.drafts.GetByID(ctx, branchID, id)
}

func (s *MessageService) ListDrafts(ctx context.Context, branchID string, params repository.DraftListParams) ([]domain.MessageDraft, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.drafts.List(ctx, branchID, params)
}

// UpdateDraftMessage edits the text of an open draft. Sent and failed
// drafts are immutable.
func (s *MessageService) UpdateDraftMessage(ctx context.Context, branchID, id, message string) (*domain.MessageDraft, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrValidation)
	}

	if err := s.drafts.UpdateMessage(ctx, branchID, id, message); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			if _, getErr := s.drafts.GetByID(ctx, branchID, id); errors.Is(getErr, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("%w: draft is no longer editable", domain.ErrConflict)
		}
		return nil, err
	}

	return s.drafts.GetByID(ctx, branchID, id)
}

// DeleteDrafts removes open drafts only and reports how many were deleted.
func (s *MessageService) DeleteDrafts(ctx context.Context, branchID string, ids []string) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: at least one draft id is required", domain.ErrValidation)
	}
	return s.drafts.DeleteOpen(ctx, branchID, ids)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
