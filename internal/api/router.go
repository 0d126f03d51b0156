package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/item-sharing-backend/internal/booking/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/comment"
	commentHttp "github.com/nekogravitycat/item-sharing-backend/internal/comment/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	itemHttp "github.com/nekogravitycat/item-sharing-backend/internal/item/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/itemrequest"
	itemRequestHttp "github.com/nekogravitycat/item-sharing-backend/internal/itemrequest/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/logging"
	"github.com/nekogravitycat/item-sharing-backend/internal/photo"
	photoHttp "github.com/nekogravitycat/item-sharing-backend/internal/photo/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
	userHttp "github.com/nekogravitycat/item-sharing-backend/internal/user/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	MaxUploadBytes int64
	UserService    user.Service
	ItemService    item.Service
	BookingService booking.Service
	CommentService comment.Service
	PhotoService   photo.Service
	RequestService itemrequest.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, logging, auth) and registering routes for every module.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logging.Middleware(), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	authMiddleware := Authenticated(cfg.JWTManager, cfg.UserService)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	itemHandler := itemHttp.NewHandler(cfg.ItemService, cfg.BookingService, cfg.CommentService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	commentHandler := commentHttp.NewHandler(cfg.CommentService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService, cfg.MaxUploadBytes)
	requestHandler := itemRequestHttp.NewHandler(cfg.RequestService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		itemHttp.RegisterRoutes(v1, itemHandler, authMiddleware)
		commentHttp.RegisterRoutes(v1, commentHandler, authMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		itemRequestHttp.RegisterRoutes(v1, requestHandler, authMiddleware)
	}

	return r
}

func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		config.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	return config
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
