package main

import (
	"context"
	"fmt"
	"log"

	"catalog-service/config"
	"catalog-service/internal/domain/catalog"
	"catalog-service/internal/domain/image"
	"catalog-service/internal/handler"
	"catalog-service/internal/middleware"
	"catalog-service/internal/redis"
	"catalog-service/internal/repository"
	"catalog-service/internal/services"
	"catalog-service/internal/storage"
	"catalog-service/pkg/database"
	"catalog-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
		gin.SetMode(gin.ReleaseMode)
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	// Connect to Database
	database.Connect(cfg)
	if err := database.DB.AutoMigrate(
		&catalog.Brand{},
		&catalog.Category{},
		&catalog.Product{},
		&image.Image{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Object storage is mandatory: image rows are never written without
	// their blobs.
	s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	blobs := storage.NewTieredStore(s3Client, l)

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	imageCache := redis.NewImageCache(redisClient, cfg.ImageCacheTTL)

	imageRepo := repository.NewImageRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)
	brandRepo := repository.NewBrandRepository(database.DB)
	categoryRepo := repository.NewCategoryRepository(database.DB)

	thumbnailer := services.NewThumbnailer(cfg.ThumbnailBoxPx, cfg.ThumbnailQuality)
	validator := services.NewMetadataValidator(cfg.ImageNameMaxLen, cfg.ImageDescriptionMaxLen)

	imageService := services.NewImageService(imageRepo, productRepo, blobs, thumbnailer, validator, imageCache, l)
	productService := services.NewProductService(productRepo, brandRepo, categoryRepo)
	brandService := services.NewBrandService(brandRepo)
	categoryService := services.NewCategoryService(categoryRepo)

	imageHandler := handler.NewImageHandler(imageService, cfg.MaxUploadBytes)
	productHandler := handler.NewProductHandler(productService)
	brandHandler := handler.NewBrandHandler(brandService)
	categoryHandler := handler.NewCategoryHandler(categoryService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	{
		api.POST("/products", productHandler.Create)
		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.GetByID)
		api.PUT("/products/:id", productHandler.Update)
		api.DELETE("/products/:id", productHandler.Delete)

		api.POST("/products/:id/images/bulk", imageHandler.BulkSave)
		api.GET("/products/:id/images", imageHandler.List)

		api.POST("/brands", brandHandler.Create)
		api.GET("/brands", brandHandler.List)
		api.GET("/brands/:id", brandHandler.GetByID)

		api.POST("/categories", categoryHandler.Create)
		api.GET("/categories", categoryHandler.List)
		api.GET("/categories/:id", categoryHandler.GetByID)
	}

	l.Infof("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
