package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
	"github.com/kpmisthah/twaybastore-admin/internal/mail"
	"github.com/kpmisthah/twaybastore-admin/internal/repository"
)

var (
	ErrBroadcastEmpty     = errors.New("subject and content must both be filled")
	ErrBroadcastUnsafe    = errors.New("the email contains restricted or inappropriate words")
	ErrBroadcastTooShort  = errors.New("the message is too short")
	ErrNoBroadcastTargets = errors.New("no users with an email address to notify")
)

// Words that a store-wide email must never contain. Matches the
// moderation list the dashboard has always enforced.
var bannedWords = []string{
	"spam", "scam", "fake", "nsfw", "hate", "kill", "sex",
	"violence", "bomb", "terror", "porn", "drugs",
}

// minBroadcastWords rejects one-line accidental sends.
const minBroadcastWords = 5

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)

	// Markup that must never reach a customer inbox.
	unsafeMarkupRe = regexp.MustCompile(`(?i)<\s*(script|iframe)\b|\bon(error|load|click)\s*=`)
)

type BroadcastService struct {
	userRepo *repository.UserRepository
	mailer   mail.Mailer
	logger   *zap.Logger
}

func NewBroadcastService(userRepo *repository.UserRepository, mailer mail.Mailer, logger *zap.Logger) *BroadcastService {
	return &BroadcastService{
		userRepo: userRepo,
		mailer:   mailer,
		logger:   logger,
	}
}

// SendBroadcast mails subject/content to every non-banned user with an
// email address. Validation happens before any mail goes out; delivery
// failures to individual recipients are counted, not fatal.
func (s *BroadcastService) SendBroadcast(ctx context.Context, req domain.BroadcastRequest) (*domain.BroadcastResponse, error) {
	subject := strings.TrimSpace(req.Subject)
	content := strings.TrimSpace(req.Content)
	if subject == "" || content == "" {
		return nil, ErrBroadcastEmpty
	}
	if containsBannedWord(subject) || containsBannedWord(content) {
		return nil, ErrBroadcastUnsafe
	}
	if unsafeMarkupRe.MatchString(content) {
		return nil, ErrBroadcastUnsafe
	}
	plain := htmlTagRe.ReplaceAllString(content, " ")
	if len(strings.Fields(plain)) < minBroadcastWords {
		return nil, ErrBroadcastTooShort
	}

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := &domain.BroadcastResponse{}
	for _, u := range users {
		if u.Email == "" || u.Banned {
			continue
		}
		if err := s.mailer.Send(u.Email, subject, content); err != nil {
			resp.Failed++
			s.logger.Warn("Broadcast delivery failed",
				zap.String("user_id", u.UserID),
				zap.Error(err))
			continue
		}
		resp.Recipients++
	}

	if resp.Recipients == 0 && resp.Failed == 0 {
		return nil, ErrNoBroadcastTargets
	}

	s.logger.Info("Broadcast sent",
		zap.String("subject", subject),
		zap.Int("recipients", resp.Recipients),
		zap.Int("failed", resp.Failed))
	return resp, nil
}

func containsBannedWord(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range bannedWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
