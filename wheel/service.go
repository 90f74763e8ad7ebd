package wheel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/alekreuaya/lucky-naga/model"
	"github.com/alekreuaya/lucky-naga/storage"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or redeem code")
	ErrCodeAlreadyConsumed = errors.New("this redeem code has already been used")
	ErrNoPrizesConfigured  = errors.New("no prizes configured")
	ErrNoEligiblePrizes    = errors.New("no prize is eligible for selection")
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Config struct {
	// Length of generated redeem codes
	CodeLength int
	// Optional seeded source for deterministic tests
	Rand *rand.Rand
}

// Service orchestrates the redemption protocol and code generation. It
// holds no state of its own beyond the random source; correctness under
// concurrent spins relies entirely on the store's conditional update.
type Service struct {
	store      storage.Store
	codeLength int

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewService(cfg *Config, store storage.Store) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	codeLength := cfg.CodeLength
	if codeLength == 0 {
		codeLength = 8
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store:      store,
		codeLength: codeLength,
		rand:       rnd,
	}
}

type SpinResult struct {
	Prize   model.Prize `json:"prize"`
	Message string      `json:"message"`
}

// Spin validates the (username, code) pair, draws a prize, marks the
// code consumed and records the draw.
//
// The lookup at the top exists only to tell "unknown pair" apart from
// "already used"; the conditional update in step two is the actual
// guard, so a pair of racing spins can both pass the lookup but only
// one of them claims the code. The code is claimed before the ledger
// write: a crash in between loses a ledger row, never double-awards.
func (s *Service) Spin(ctx context.Context, username, code string) (*SpinResult, error) {
	rec, err := s.store.FindCode(ctx, username, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if rec.Consumed {
		return nil, ErrCodeAlreadyConsumed
	}

	prizes, err := s.store.GetPrizes(ctx)
	if err != nil {
		return nil, err
	}
	if len(prizes) == 0 {
		return nil, ErrNoPrizesConfigured
	}

	s.randMu.Lock()
	prize, err := Pick(prizes, s.rand)
	s.randMu.Unlock()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claimed, err := s.store.ConsumeCode(ctx, username, code, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrCodeAlreadyConsumed
	}

	err = s.store.AppendDraw(ctx, &model.DrawRecord{
		Username:   username,
		PrizeLabel: prize.Label,
		PrizeColor: prize.Color,
		PrizeImage: prize.Image,
		DrawnAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return &SpinResult{
		Prize:   *prize,
		Message: fmt.Sprintf("Congratulations! You won %s!", prize.Label),
	}, nil
}

type GenerateCodesInput struct {
	// Explicit usernames to issue codes for. When empty, Count
	// synthetic usernames are generated from Prefix.
	Usernames []string
	Count     int
	Prefix    string
}

// GenerateCodes creates one unconsumed redeem code per requested
// username. Usernames that already hold a record are skipped silently,
// so the batch is idempotent and the returned slice may be shorter than
// the request.
func (s *Service) GenerateCodes(ctx context.Context, input *GenerateCodesInput) ([]model.RedeemCode, error) {
	usernames := input.Usernames
	if len(usernames) == 0 && input.Count > 0 {
		prefix := strings.ToUpper(strings.TrimSpace(input.Prefix))
		if prefix == "" {
			prefix = "USER"
		}
		for i := 0; i < input.Count; i++ {
			usernames = append(usernames, fmt.Sprintf("%s_%d", prefix, 1000+s.randIntn(9000)))
		}
	}

	created := []model.RedeemCode{}
	for _, username := range usernames {
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		rec := model.RedeemCode{
			Username: username,
			Code:     s.newCode(),
			IssuedAt: time.Now().UTC(),
		}
		err := s.store.InsertCode(ctx, &rec)
		if errors.Is(err, storage.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		created = append(created, rec)
	}
	return created, nil
}

func (s *Service) newCode() string {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	b := make([]byte, s.codeLength)
	for i := range b {
		b[i] = codeAlphabet[s.rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (s *Service) randIntn(n int) int {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Intn(n)
}
