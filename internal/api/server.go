package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/lotto/docs"
	v1 "github.com/yizeng/gab/gin/gorm/lotto/internal/api/handler/v1"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/api/middleware"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/service"
	"github.com/yizeng/gab/gin/gorm/lotto/internal/storage"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	mirror service.Mirror
	images storage.Storage
}

func NewServer(conf *config.AppConfig, db *gorm.DB, mirror service.Mirror, images storage.Storage) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		mirror: mirror,
		images: images,
	}

	s.MountMiddlewares()

	userSvc := s.initUserService(db)
	lottoSvc := s.initLottoService(db)

	authHandler := s.initAuthHandler(db)
	userHandler := v1.NewUserHandler(userSvc)
	lottoHandler := v1.NewLottoHandler(lottoSvc, userSvc)
	adminHandler := v1.NewAdminHandler(lottoSvc)
	s.MountHandlers(authHandler, userHandler, lottoHandler, adminHandler, userSvc)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo, s.mirror)
	handler := v1.NewAuthHandler(s.Config.API, svc, s.images)

	return handler
}

func (s *Server) initUserService(db *gorm.DB) *service.UserService {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)

	return service.NewUserService(repo, s.mirror)
}

func (s *Server) initLottoService(db *gorm.DB) *service.LottoService {
	lottoDAO := dao.NewLottoDAO(db)
	repo := repository.NewLottoRepository(lottoDAO)

	return service.NewLottoService(repo, s.mirror, s.Config.Lotto)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	lottoHandler *v1.LottoHandler,
	adminHandler *v1.AdminHandler,
	users middleware.UserFinder,
) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/register", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.GET("/lottos/results", lottoHandler.HandleResults)
	}

	authed := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		authed.GET("/users/me", userHandler.HandleGetMe)

		authed.GET("/lottos", lottoHandler.HandleListLottos)
		authed.POST("/lottos/search", lottoHandler.HandleSearchLottos)
		authed.GET("/lottos/mine", lottoHandler.HandleMyLottos)
		authed.POST("/lottos/:lid/purchase", lottoHandler.HandlePurchase)
		authed.POST("/lottos/:lid/claim", lottoHandler.HandleClaim)
	}

	admin := s.Router.Group(basePath+"/admin", authenticator.VerifyJWT(), middleware.RequireAdmin(users))
	{
		admin.GET("/users", userHandler.HandleListUsers)
		admin.POST("/users/:uid/wallet", userHandler.HandleCreditWallet)

		admin.POST("/lottos", adminHandler.HandleCreateLottos)
		admin.GET("/lottos/rewarded", adminHandler.HandleRewardedLottos)
		admin.POST("/lottos/:lid/reward", adminHandler.HandleAssignReward)
		admin.POST("/rewards", adminHandler.HandleCreateReward)
		admin.POST("/reset", adminHandler.HandleReset)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	if s.Config.API.UploadDir != "" {
		s.Router.Static("/uploads", s.Config.API.UploadDir)
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Lotto API"
	docs.SwaggerInfo.Description = "Lottery ticket sales: wallets, ticket issuing, purchase, rewards and claims."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
