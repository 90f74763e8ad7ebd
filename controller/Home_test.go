package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/alekreuaya/lucky-naga/auth"
	"github.com/alekreuaya/lucky-naga/model"
	"github.com/alekreuaya/lucky-naga/storage"
	"github.com/alekreuaya/lucky-naga/utils"
	"github.com/alekreuaya/lucky-naga/wheel"
)

func init() {
	utils.IsTestMode = true
}

// setupTest wires the package globals to an in-memory store and returns
// it so tests can seed data directly.
func setupTest(t *testing.T) *storage.Memory {
	t.Helper()
	store := storage.NewMemory()
	service := wheel.NewService(&wheel.Config{Rand: rand.New(rand.NewSource(1))}, store)
	tokens := auth.NewManager("test-secret", time.Hour)
	Setup(store, service, tokens)
	return store
}

func seedPrizes(t *testing.T, store *storage.Memory) {
	t.Helper()
	err := store.ReplacePrizes(context.Background(), []model.Prize{
		{Id: "1", Label: "Gold Coin", Color: "#FFD700", Weight: 50},
		{Id: "2", Label: "Ruby Gem", Color: "#E0115F", Weight: 50},
	})
	assert.NoError(t, err)
}

func TestServiceStatusCheck(t *testing.T) {
	a := assert.New(t)
	setupTest(t)
	app := fiber.New()
	app.Get("/service-status", ServiceStatusCheck)

	resp, _ := app.Test(httptest.NewRequest("GET", "/service-status", nil), -1)
	a.Equal(200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	a.Contains(string(body), "running")
}

func TestGetPrizes(t *testing.T) {
	a := assert.New(t)
	store := setupTest(t)
	seedPrizes(t, store)
	app := fiber.New()
	app.Get("/prizes", GetPrizes)

	resp, _ := app.Test(httptest.NewRequest("GET", "/prizes", nil), -1)
	a.Equal(200, resp.StatusCode)

	var result map[string][]model.Prize
	body, _ := io.ReadAll(resp.Body)
	a.NoError(json.Unmarshal(body, &result))
	a.Len(result["prizes"], 2)
	a.Equal("Gold Coin", result["prizes"][0].Label)
}

func TestGetHistory(t *testing.T) {
	a := assert.New(t)
	store := setupTest(t)
	base := time.Now().UTC()
	for i := 0; i < 60; i++ {
		err := store.AppendDraw(context.Background(), &model.DrawRecord{
			Username:   "alice",
			PrizeLabel: "Gold Coin",
			DrawnAt:    base.Add(time.Duration(i) * time.Second),
		})
		a.NoError(err)
	}
	app := fiber.New()
	app.Get("/history", GetHistory)

	resp, _ := app.Test(httptest.NewRequest("GET", "/history", nil), -1)
	a.Equal(200, resp.StatusCode)

	var result map[string][]model.DrawRecord
	body, _ := io.ReadAll(resp.Body)
	a.NoError(json.Unmarshal(body, &result))
	a.Len(result["history"], 50, "history is capped")
	a.True(result["history"][0].DrawnAt.After(result["history"][1].DrawnAt), "newest first")
}

func TestSpinWheel(t *testing.T) {
	a := assert.New(t)
	store := setupTest(t)
	seedPrizes(t, store)
	err := store.InsertCode(context.Background(), &model.RedeemCode{
		Username: "alice",
		Code:     "AAAA1111",
		IssuedAt: time.Now().UTC(),
	})
	a.NoError(err)

	app := fiber.New()
	app.Post("/spin", SpinWheel)

	tests := []struct {
		description  string
		payload      map[string]string
		expectedCode int
		expectedBody string
	}{
		{
			description:  "successful spin",
			payload:      map[string]string{"username": "alice", "redeem_code": "AAAA1111"},
			expectedCode: 200,
			expectedBody: "Congratulations",
		},
		{
			description:  "code already used",
			payload:      map[string]string{"username": "alice", "redeem_code": "AAAA1111"},
			expectedCode: 400,
			expectedBody: "already been used",
		},
		{
			description:  "unknown username",
			payload:      map[string]string{"username": "ghost", "redeem_code": "AAAA1111"},
			expectedCode: 400,
			expectedBody: "Invalid username or redeem code",
		},
		{
			description:  "wrong code",
			payload:      map[string]string{"username": "alice", "redeem_code": "WRONG000"},
			expectedCode: 400,
			expectedBody: "Invalid username or redeem code",
		},
		{
			description:  "missing fields",
			payload:      map[string]string{},
			expectedCode: 400,
			expectedBody: "Please provide all required data",
		},
	}
	for _, test := range tests {
		reqBody, _ := json.Marshal(test.payload)
		req := httptest.NewRequest("POST", "/spin", bytes.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")

		resp, _ := app.Test(req, -1)
		a.Equal(test.expectedCode, resp.StatusCode, test.description)
		body, _ := io.ReadAll(resp.Body)
		a.Contains(string(body), test.expectedBody, test.description)

		if test.description == "successful spin" {
			var result map[string]interface{}
			a.NoError(json.Unmarshal(body, &result))
			prize, ok := result["prize"].(map[string]interface{})
			a.True(ok, "prize should be an object")
			a.Contains([]interface{}{"Gold Coin", "Ruby Gem"}, prize["label"])
		}
	}

	// the spin must be on the ledger
	count, err := store.CountDraws(context.Background())
	a.NoError(err)
	a.EqualValues(1, count)
}

func TestSpinWheelNoPrizes(t *testing.T) {
	a := assert.New(t)
	store := setupTest(t)
	err := store.InsertCode(context.Background(), &model.RedeemCode{
		Username: "alice",
		Code:     "AAAA1111",
		IssuedAt: time.Now().UTC(),
	})
	a.NoError(err)

	app := fiber.New()
	app.Post("/spin", SpinWheel)

	reqBody, _ := json.Marshal(map[string]string{"username": "alice", "redeem_code": "AAAA1111"})
	req := httptest.NewRequest("POST", "/spin", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req, -1)
	a.Equal(500, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	a.Contains(string(body), "No prizes configured")
}
