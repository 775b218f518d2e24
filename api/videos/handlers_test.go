package videos

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/clipdeck-api/api/types"
	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/killallgit/clipdeck-api/internal/services/resolver"
	"github.com/killallgit/clipdeck-api/internal/services/storage"
	videosService "github.com/killallgit/clipdeck-api/internal/services/videos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testUser = "user-1"

// stubResolver returns canned metadata or a configured failure
type stubResolver struct {
	info *resolver.VideoInfo
	err  error
}

func (r *stubResolver) ResolveInfo(ctx context.Context, sourceURL string) (*resolver.VideoInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.info, nil
}

func (r *stubResolver) Download(ctx context.Context, sourceURL, destPath string) error {
	return nil
}

func newTestRouter(t *testing.T, res resolver.Resolver) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SourceVideo{}, &models.Clip{}))

	store, err := storage.NewLocalMediaStore(t.TempDir())
	require.NoError(t, err)

	deps := &types.Dependencies{
		VideoService: videosService.NewService(db, res, store),
	}

	router := gin.New()
	group := router.Group("/api/v1/videos")
	group.Use(func(c *gin.Context) {
		c.Set(types.UserIDKey, testUser)
	})
	RegisterRoutes(group, deps)

	return router, db
}

func postVideo(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"url": url})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/videos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateVideo(t *testing.T) {
	router, _ := newTestRouter(t, &stubResolver{
		info: &resolver.VideoInfo{Title: "Resolved", Duration: 213},
	})

	w := postVideo(t, router, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	require.Equal(t, http.StatusCreated, w.Code)

	var resp VideoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.UUID)
	assert.Equal(t, "Resolved", resp.Title)
	assert.Equal(t, 213, resp.Duration)
}

func TestCreateVideo_DuplicateURL(t *testing.T) {
	router, _ := newTestRouter(t, &stubResolver{
		info: &resolver.VideoInfo{Title: "Resolved", Duration: 213},
	})

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	require.Equal(t, http.StatusCreated, postVideo(t, router, url).Code)

	w := postVideo(t, router, url)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateVideo_ResolutionFailure(t *testing.T) {
	router, db := newTestRouter(t, &stubResolver{
		err: &resolver.ResolutionError{
			URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Err: resolver.ErrVideoUnavailable,
		},
	})

	w := postVideo(t, router, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	// Upstream resolution failures surface as a bad gateway
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "metadata resolver")

	// No record must be left behind
	var count int64
	db.Model(&models.SourceVideo{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
