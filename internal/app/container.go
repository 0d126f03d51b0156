package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/item-sharing-backend/internal/api"
	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	"github.com/nekogravitycat/item-sharing-backend/internal/comment"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/itemrequest"
	"github.com/nekogravitycat/item-sharing-backend/internal/photo"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/storage"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	JWTSecret      string
	JWTTTL         time.Duration
	BcryptCost     int
	StoragePath    string
	MaxUploadBytes int64
	// Clock is read once per booking operation. Nil means the wall clock.
	Clock func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	store, err := storage.NewLocal(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Item Module
	itemRepo := item.NewPgxRepository(cfg.DBPool)
	itemService := item.NewService(itemRepo, userService)

	// Item Request Module
	requestRepo := itemrequest.NewPgxRepository(cfg.DBPool)
	requestService := itemrequest.NewService(requestRepo, userService, itemService)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, userService, itemService, cfg.Clock)

	// Comment Module
	commentRepo := comment.NewPgxRepository(cfg.DBPool)
	commentService := comment.NewService(commentRepo, userService, itemService, bookingService)

	// Photo Module
	photoRepo := photo.NewPgxRepository(cfg.DBPool)
	photoService := photo.NewService(photoRepo, itemService, store, cfg.MaxUploadBytes)

	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
		CommentService: commentService,
		PhotoService:   photoService,
		RequestService: requestService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
