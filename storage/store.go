package storage

import (
	"context"
	"errors"
	"time"

	"github.com/alekreuaya/lucky-naga/model"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrCannotDeleteMaster = errors.New("the master account cannot be deleted")
)

// CodeFilter narrows ListCodes by consumed status.
type CodeFilter string

const (
	CodeFilterAll    CodeFilter = ""
	CodeFilterUsed   CodeFilter = "used"
	CodeFilterUnused CodeFilter = "unused"
)

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Store is the persistence contract the service layer depends on. The
// Postgres implementation backs the running service; the in-memory one
// backs tests.
//
// ConsumeCode is the single concurrency guard for redemption: it must
// update the record only when it is currently unconsumed and report
// whether anything matched, atomically.
type Store interface {
	FindCode(ctx context.Context, username, code string) (*model.RedeemCode, error)
	InsertCode(ctx context.Context, rec *model.RedeemCode) error
	ConsumeCode(ctx context.Context, username, code string, at time.Time) (bool, error)
	ListCodes(ctx context.Context, filter CodeFilter) ([]model.RedeemCode, error)
	CountCodes(ctx context.Context) (total int64, used int64, err error)

	GetPrizes(ctx context.Context) ([]model.Prize, error)
	ReplacePrizes(ctx context.Context, prizes []model.Prize) error

	AppendDraw(ctx context.Context, rec *model.DrawRecord) error
	ListDraws(ctx context.Context, limit int) ([]model.DrawRecord, error)
	CountDraws(ctx context.Context) (int64, error)
	DrawTotals(ctx context.Context) ([]LabelCount, error)

	FindAdmin(ctx context.Context, username string) (*model.AdminAccount, error)
	InsertAdmin(ctx context.Context, account *model.AdminAccount) error
	ListAdmins(ctx context.Context) ([]model.AdminAccount, error)
	DeleteAdmin(ctx context.Context, username string) error
	UpdateAdminPassword(ctx context.Context, username, passwordHash string) error
}
