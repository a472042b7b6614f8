package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Hassan1910/Community-Collaboration-Platforms/api"
	"github.com/Hassan1910/Community-Collaboration-Platforms/auth"
	"github.com/Hassan1910/Community-Collaboration-Platforms/cache"
	"github.com/Hassan1910/Community-Collaboration-Platforms/config"
	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/Hassan1910/Community-Collaboration-Platforms/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogger(c)
	log.Info().Msg("Initializing app...")

	ctx := context.Background()

	if path := config.GetString(c, "SSM_PARAMETER_PATH", ""); path != "" {
		params, err := config.LoadSSMParameters(ctx, config.GetString(c, "AWS_REGION", ""), path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Error loading SSM parameters")
		}
		c = config.Merge(c, params)
		log.Info().Int("count", len(params)).Msg("Loaded SSM parameters")
	}

	db, err := database.Open(database.Options{
		DSN:          config.GetString(c, "DATABASE_URL", ""),
		ReplicaDSNs:  config.GetList(c, "DATABASE_REPLICA_URLS"),
		MaxOpenConns: config.GetInt(c, "DATABASE_MAX_OPEN_CONNS", 25),
		MaxIdleConns: config.GetInt(c, "DATABASE_MAX_IDLE_CONNS", 5),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(c, "GENERATED_OUT_PATH", "./generated")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if err := models.WriteColumnReport(os.Stdout, db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	currentDB := database.New(db)
	defer currentDB.Close()

	if err := currentDB.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	if config.GetBool(c, "AUTO_MIGRATE", false) {
		if err := currentDB.AutoMigrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	provider, err := newAuthProvider(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing auth provider")
	}

	store, uploadDir, err := newImageStore(ctx, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing image storage")
	}

	var highlightCache services.HighlightCache
	if redisURL := config.GetString(c, "REDIS_URL", ""); redisURL != "" {
		redisClient, err := cache.Connect(ctx, redisURL, config.GetString(c, "REDIS_KEY_PREFIX", "ccp"))
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to redis")
		}
		defer redisClient.Close()
		highlightCache = redisClient
	}

	var notifier services.CommentNotifier
	if mailer := services.NewMailer(config.GetString(c, "RESEND_API_KEY", ""), config.GetString(c, "RESEND_FROM_EMAIL", "")); mailer != nil {
		notifier = services.NewEmailNotifier(mailer, config.GetString(c, "SITE_BASE_URL", ""))
	} else {
		log.Info().Msg("Email notifications disabled")
	}

	highlights := services.NewHighlightService(
		currentDB.ProjectRepo(),
		highlightCache,
		config.GetSeconds(c, "HIGHLIGHTS_CACHE_TTL_SECONDS", 60),
	)
	identity := services.NewIdentityResolver(currentDB.UserRepo(), config.GetBool(c, "AUTO_PROVISION_USERS", true))
	projects := services.NewProjectService(
		currentDB,
		services.NewUploader(store),
		highlights,
		config.GetString(c, "SOURCE_HOST", "github.com"),
	)
	interactions := services.NewInteractionService(
		currentDB,
		highlights,
		notifier,
		config.GetInt(c, "MAX_COMMENT_LENGTH", services.DefaultMaxCommentLength),
	)

	server, err := api.NewServer(c, api.Dependencies{
		DB:              currentDB,
		Auth:            provider,
		Identity:        identity,
		Projects:        projects,
		Interactions:    interactions,
		Highlights:      highlights,
		Profiles:        services.NewProfileService(currentDB, identity, projects),
		UploadDir:       uploadDir,
		UploadURLPrefix: config.GetString(c, "UPLOAD_URL_PREFIX", "/uploads"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	interactions.Wait()
}

func setupLogger(c map[string]string) {
	level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(config.GetString(c, "LOG_FORMAT", "json"), "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func newAuthProvider(c map[string]string) (auth.Provider, error) {
	switch strings.ToLower(config.GetString(c, "AUTH_PROVIDER", "jwt")) {
	case "descope":
		return auth.NewDescopeProvider(config.GetString(c, "DESCOPE_PROJECT_ID", ""))
	case "jwt":
		return auth.NewJWTProvider(config.GetString(c, "AUTH_JWT_SECRET", ""), config.GetString(c, "AUTH_JWT_ISSUER", ""))
	default:
		return nil, fmt.Errorf("unsupported AUTH_PROVIDER %q", config.GetString(c, "AUTH_PROVIDER", ""))
	}
}

// newImageStore returns the configured store and, for local storage, the directory to serve.
func newImageStore(ctx context.Context, c map[string]string) (services.ImageStore, string, error) {
	switch strings.ToLower(config.GetString(c, "UPLOAD_BACKEND", "local")) {
	case "s3":
		bucket := config.GetString(c, "S3_BUCKET", "")
		if bucket == "" {
			return nil, "", fmt.Errorf("S3_BUCKET is required for the s3 upload backend")
		}
		opts := []func(*awsconfig.LoadOptions) error{}
		if region := config.GetString(c, "AWS_REGION", ""); region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("load aws config: %w", err)
		}
		return services.NewS3Store(s3.NewFromConfig(awsCfg), bucket, config.GetString(c, "S3_PUBLIC_BASE_URL", "")), "", nil

	case "local":
		dir := config.GetString(c, "UPLOAD_DIR", "public/uploads")
		store, err := services.NewLocalStore(dir, config.GetString(c, "UPLOAD_URL_PREFIX", "/uploads"))
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil

	default:
		return nil, "", fmt.Errorf("unsupported UPLOAD_BACKEND %q", config.GetString(c, "UPLOAD_BACKEND", ""))
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-sig)
}
