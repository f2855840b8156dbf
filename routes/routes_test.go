package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"oficina-backend/config"
	"oficina-backend/models"
	"oficina-backend/services"
	"oficina-backend/testutil"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenExpiry: time.Hour},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newRouter(t *testing.T, db *gorm.DB, cfg *config.Config) *gin.Engine {
	t.Helper()
	reg := prometheus.NewRegistry()
	r, err := SetupRouter(Deps{
		DB:       db,
		Config:   cfg,
		Log:      zap.NewNop(),
		Registry: reg,
		Metrics:  services.NewMetrics(reg),
	})
	require.NoError(t, err)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	r := newRouter(t, testutil.NewDB(t), testConfig())

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "oficina_http_request_duration_seconds")
}

func TestWorkOrderLifecycleOverHTTP(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	r := newRouter(t, db, testConfig())
	tenant := f.Workshop.ID.String()

	w := do(t, r, http.MethodPost, "/ordens-servico", gin.H{"cliente_id": f.Customer.ID, "veiculo_id": f.Vehicle.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errBody map[string]string
	decode(t, w, &errBody)
	assert.Equal(t, "oficina_id is required", errBody["error"])

	w = do(t, r, http.MethodPost, "/ordens-servico", gin.H{
		"oficina_id":  tenant,
		"cliente_id":  f.Customer.ID,
		"veiculo_id":  f.Vehicle.ID,
		"servico_ids": []uuid.UUID{f.Oil.ID},
		"observacao":  "barulho no motor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Message string    `json:"message"`
		ID      uuid.UUID `json:"id"`
	}
	decode(t, w, &created)
	require.NotEqual(t, uuid.Nil, created.ID)

	w = do(t, r, http.MethodPut, "/ordens-servico/"+created.ID.String(), gin.H{
		"oficina_id": tenant, "status": "Finalizada", "total": 150,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/financeiro?oficina_id="+tenant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []map[string]any
	decode(t, w, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "Receita", entries[0]["tipo"])
	assert.Equal(t, 150.0, entries[0]["valor"])

	w = do(t, r, http.MethodGet, "/financeiro/resumo?oficina_id="+tenant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary map[string]float64
	decode(t, w, &summary)
	assert.Equal(t, 150.0, summary["receita"])
	assert.Equal(t, 100.0, summary["lucratividade"])

	w = do(t, r, http.MethodGet, "/ordens-servico?oficina_id="+tenant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []map[string]any
	decode(t, w, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, true, orders[0]["tem_financeiro"])
	assert.Equal(t, "Troca de óleo", orders[0]["servico_nome"])

	w = do(t, r, http.MethodDelete, "/ordens-servico/"+created.ID.String()+"?oficina_id="+tenant, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/ordens-servico/"+created.ID.String()+"/pdf?oficina_id="+tenant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	other := testutil.Seed(t, db, "Oficina Norte")
	w = do(t, r, http.MethodGet, "/ordens-servico/"+created.ID.String()+"/pdf?oficina_id="+other.Workshop.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerRejectsBadInput(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	r := newRouter(t, db, testConfig())
	tenant := f.Workshop.ID.String()

	w := do(t, r, http.MethodPost, "/financeiro", gin.H{"oficina_id": tenant, "tipo": "Transferencia", "valor": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/financeiro", gin.H{"oficina_id": tenant, "tipo": "expense", "valor": 100000000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/financeiro", gin.H{"oficina_id": tenant, "tipo": "expense", "valor": 99999999.99})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodDelete, "/financeiro/"+uuid.NewString()+"?oficina_id="+tenant, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, "/financeiro/not-a-uuid?oficina_id="+tenant, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginOverHTTP(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	r := newRouter(t, db, testConfig())

	w := do(t, r, http.MethodPost, "/usuarios", gin.H{
		"oficina_id": f.Workshop.ID, "nome": "Carlos", "email": "carlos@oficina.com", "senha": "s3nha",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/login", gin.H{"email": "ninguem@oficina.com", "senha": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodPost, "/login", gin.H{"email": "carlos@oficina.com", "senha": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, r, http.MethodPost, "/login", gin.H{"email": "carlos@oficina.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/login", gin.H{"email": "carlos@oficina.com", "senha": "s3nha"})
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "Oficina Centro", body["oficina_nome"])
	assert.NotEmpty(t, body["token"])
	user := body["usuario"].(map[string]any)
	assert.NotContains(t, user, "senha")
	assert.NotContains(t, user, "password")
}

func TestDashboardQueryValidation(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	r := newRouter(t, db, testConfig())
	tenant := f.Workshop.ID.String()

	w := do(t, r, http.MethodGet, "/dashboard?oficina_id="+tenant+"&mes=13&ano=2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/dashboard?oficina_id="+tenant+"&mes=3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/dashboard?oficina_id="+tenant+"&mes=abc&ano=2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/dashboard?oficina_id="+tenant+"&mes=3&ano=2026", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, 3.0, body["mes"])
}

func TestRequireToken(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	other := testutil.Seed(t, db, "Oficina Norte")
	cfg := testConfig()
	cfg.Auth.RequireToken = true
	r := newRouter(t, db, cfg)

	w := do(t, r, http.MethodGet, "/clientes?oficina_id="+f.Workshop.ID.String(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, time.Hour)
	token, err := issuer.GenerateToken(uuid.NewString(), f.Workshop.ID.String())
	require.NoError(t, err)

	w = do(t, r, http.MethodGet, "/clientes?oficina_id="+f.Workshop.ID.String(), nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	var customers []map[string]any
	decode(t, w, &customers)
	assert.Len(t, customers, 1)

	w = do(t, r, http.MethodGet, "/clientes?oficina_id="+other.Workshop.ID.String(), nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateWorkOrderRequiresStatusAndTotal(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Oficina Centro")
	r := newRouter(t, db, testConfig())
	tenant := f.Workshop.ID.String()

	w := do(t, r, http.MethodPost, "/ordens-servico", gin.H{
		"oficina_id": tenant,
		"cliente_id": f.Customer.ID,
		"veiculo_id": f.Vehicle.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &created)
	path := "/ordens-servico/" + created.ID.String()

	w = do(t, r, http.MethodPut, path, gin.H{"oficina_id": tenant, "status": "Finalizada", "total": 250})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing total", gin.H{"oficina_id": tenant, "status": "Finalizada"}},
		{"null total", gin.H{"oficina_id": tenant, "status": "Finalizada", "total": nil}},
		{"missing status", gin.H{"oficina_id": tenant, "total": 90}},
		{"negative total", gin.H{"oficina_id": tenant, "status": "Finalizada", "total": -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPut, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var order models.WorkOrder
			require.NoError(t, db.First(&order, "id = ?", created.ID).Error)
			assert.Equal(t, "Finalizada", order.Status)
			assert.True(t, order.Total.Equal(decimal.NewFromInt(250)), order.Total.String())

			var revenues []models.LedgerEntry
			require.NoError(t, db.Where("work_order_id = ? AND type = ?", created.ID, models.LedgerRevenue).Find(&revenues).Error)
			require.Len(t, revenues, 1)
			assert.True(t, revenues[0].Amount.Equal(decimal.NewFromInt(250)), revenues[0].Amount.String())
		})
	}
}
