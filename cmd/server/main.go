package main

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"

	"gym_app_echo/internal/auth"
	"gym_app_echo/internal/config"
	"gym_app_echo/internal/docstore"
	"gym_app_echo/internal/handlers"
	"gym_app_echo/internal/server"
	"gym_app_echo/internal/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	deps := server.Deps{
		AppURL:       cfg.AppURL,
		SecureCookie: cfg.IsProduction(),
		AccessLog:    true,
		WebConfig: handlers.FirebaseWebConfig{
			APIKey:     cfg.FirebaseAPIKey,
			AuthDomain: cfg.FirebaseAuthDomain,
			ProjectID:  cfg.FirebaseProjectID,
		},
	}

	// Initialize Firebase
	app, err := services.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, cfg.FirebaseStorageBucket)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	} else {
		wireFirebase(ctx, app, cfg, &deps)
	}

	if deps.Store == nil {
		log.Println("Warning: Firestore unavailable, using in-memory document store")
		deps.Store = docstore.NewMemoryStore()
	}

	// Keyring sessions stand in for Firebase Auth in local setups
	if deps.Verifier == nil && cfg.SessionSigningKeys != "" {
		keyring, err := auth.NewKeyringVerifier(auth.ParseKeyList(cfg.SessionSigningKeys)...)
		if err != nil {
			log.Fatalf("Invalid SESSION_SIGNING_KEYS: %v", err)
		}
		deps.Verifier = keyring
		deps.Issuer = keyring
		log.Println("Using keyring session cookies")
	}
	if deps.Verifier == nil {
		log.Println("Warning: no session verifier configured, every protected route will redirect to /login")
	}

	// Initialize Redis
	if cfg.RedisURL != "" {
		cache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis connection failed: %v", err)
		} else {
			defer cache.Close()
			deps.Cache = cache
		}
	} else {
		log.Println("Warning: REDIS_URL not set, caching disabled")
	}

	if cfg.MidtransServerKey != "" {
		deps.Gateway = services.NewMidtransService(cfg.MidtransServerKey, cfg.MidtransClientKey, cfg.MidtransIsProduction)
	} else {
		log.Println("Warning: MIDTRANS_SERVER_KEY not set, online checkout disabled")
	}

	deps.KPI = services.NewKPIService(deps.Store, deps.Cache, cfg.Location())

	e := server.New(deps)

	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// wireFirebase fills the Firebase backed dependencies. Each client that
// fails to start is logged and left nil.
func wireFirebase(ctx context.Context, app *firebase.App, cfg config.Config, deps *server.Deps) {
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Printf("Warning: Firebase Auth unavailable: %v", err)
	} else {
		verifier := auth.NewFirebaseVerifier(authClient)
		deps.Verifier = verifier
		deps.Issuer = verifier
		deps.Roles = auth.NewFirebaseRoleManager(authClient)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		log.Printf("Warning: Firestore unavailable: %v", err)
	} else {
		deps.Store = docstore.NewFirestoreStore(fs)
	}

	if cfg.FirebaseStorageBucket == "" {
		log.Println("Warning: FIREBASE_STORAGE_BUCKET not set, image uploads disabled")
		return
	}
	storageClient, err := app.Storage(ctx)
	if err != nil {
		log.Printf("Warning: Firebase Storage unavailable: %v", err)
		return
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		log.Printf("Warning: storage bucket unavailable: %v", err)
		return
	}
	deps.Images = services.NewImageService(services.NewBucketUploader(bucket, cfg.FirebaseStorageBucket))
}
