package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snaky/config"
	"github.com/hoshinonyaruko/snaky/input"
	"github.com/hoshinonyaruko/snaky/memimg"
	"github.com/hoshinonyaruko/snaky/render"
	"github.com/hoshinonyaruko/snaky/session"
	"github.com/hoshinonyaruko/snaky/sqlite"
	"github.com/hoshinonyaruko/snaky/structs"
	_ "github.com/mattn/go-sqlite3"
)

// InitDB 打开数据库并建表
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := sqlite.InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewRouter wires every endpoint. skins may be nil.
func NewRouter(mgr *session.Manager, db *sql.DB, skins *memimg.Skins) *gin.Engine {
	router := gin.Default()
	// 新建一局游戏
	router.GET("/new-game", NewGameHandler(mgr))
	router.POST("/new-game", NewGameHandler(mgr))
	// 处理玩家改变方向
	router.GET("/update-direction", UpdateDirection(mgr))
	// 浏览器按键，方向键/WASD/空格/回车
	router.GET("/key", KeyHandler(mgr))
	router.GET("/reset", ResetHandler(mgr))
	router.GET("/state", StateHandler(mgr))
	// 渲染函数 返回静态地址
	router.GET("/render-map", RenderMapHandler(mgr, skins))
	// 删除会话
	router.GET("/delete-game", DeleteGameHandler(mgr))
	router.GET("/highscores", HighScoresHandler(db))
	router.GET("/stats", StatsHandler(db))
	router.GET("/ws", WebSocketHandler(mgr))
	router.Static("/static", config.GetConfigValue("output_dir").(string)) // 静态文件服务
	return router
}

func lookupSession(c *gin.Context, mgr *session.Manager) (*session.Session, bool) {
	sessionID := c.Query("sessionid")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: sessionid"})
		return nil, false
	}
	s, err := mgr.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}

func commandFailed(c *gin.Context, err error) {
	if errors.Is(err, session.ErrSessionClosed) {
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, session.ErrGameRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func NewGameHandler(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := mgr.Create()
		c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "snapshot": s.Snapshot()})
	}
}

func UpdateDirection(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, mgr)
		if !ok {
			return
		}

		var requested structs.Direction
		if key := c.Query("key"); key != "" {
			d, valid := input.FromKeyName(key)
			if !valid {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("key '%s' is not a direction", key)})
				return
			}
			requested = d
		} else {
			d, err := structs.ParseDirection(c.Query("direction"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			requested = d
		}

		st, err := s.Steer(c.Request.Context(), requested)
		if err != nil {
			commandFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"direction": st.Direction, "accepted": st.Direction == requested})
	}
}

// applyKey handles one browser key for s. Unknown keys, and restarts of a
// running game, are ignored.
func applyKey(ctx context.Context, s *session.Session, key string) (structs.GameState, error) {
	if key == "restart" || input.IsRestartKey(key, s.State().Status) {
		st, err := s.Reset(ctx)
		if errors.Is(err, session.ErrGameRunning) {
			return st, nil
		}
		return st, err
	}
	if d, ok := input.FromKeyName(key); ok {
		return s.Steer(ctx, d)
	}
	if d, err := structs.ParseDirection(key); err == nil {
		return s.Steer(ctx, d)
	}
	return s.State(), nil
}

func KeyHandler(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, mgr)
		if !ok {
			return
		}
		if _, err := applyKey(c.Request.Context(), s, c.Query("key")); err != nil {
			commandFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

func ResetHandler(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, mgr)
		if !ok {
			return
		}
		if _, err := s.Reset(c.Request.Context()); err != nil {
			commandFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

func StateHandler(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, mgr)
		if !ok {
			return
		}
		s.Touch()
		c.JSON(http.StatusOK, s.Snapshot())
	}
}

func RenderMapHandler(mgr *session.Manager, skins *memimg.Skins) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := lookupSession(c, mgr)
		if !ok {
			return
		}
		width, err := strconv.Atoi(c.DefaultQuery("width", "0"))
		if err != nil || width < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width must be a non-negative integer"})
			return
		}
		s.Touch()

		// 绘图
		blockSize := config.GetConfigValue("blocksize").(int)
		img := render.Board(s.Snapshot(), blockSize, skins)
		if limit := render.MaxScale * img.Bounds().Dx(); width > limit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("width must be at most %d", limit)})
			return
		}
		img = render.Scale(img, width)
		if _, err := render.SavePNG(img, config.GetConfigValue("output_dir").(string), s.ID); err != nil {
			log.Printf("render %s: %v", s.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to render map"})
			return
		}

		imageUrl := fmt.Sprintf("http://%s/static/%s.png", config.GetConfigValue("selfpath").(string), s.ID)
		c.JSON(http.StatusOK, gin.H{"image_url": imageUrl})
	}
}

func DeleteGameHandler(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("sessionid")
		if err := mgr.Delete(sessionID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Game deleted successfully"})
	}
}

func HighScoresHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit <= 0 || limit > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		scores, err := sqlite.TopScores(c.Request.Context(), db, limit)
		if err != nil {
			log.Printf("highscores: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load high scores"})
			return
		}
		best, err := sqlite.BestScore(c.Request.Context(), db)
		if err != nil {
			log.Printf("best score: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load high scores"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"scores": scores, "best_score": best})
	}
}

func StatsHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("sessionid")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: sessionid"})
			return
		}
		stats, err := sqlite.GetSessionStats(c.Request.Context(), db, sessionID)
		if err != nil {
			log.Printf("stats %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
