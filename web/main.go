package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"timekeep.io/timekeep/core"
	"timekeep.io/timekeep/infrastructure/devops"
	"timekeep.io/timekeep/store"
	"timekeep.io/timekeep/web/handlers/attendance"
)

// newRepository picks the backend from the environment: DSN for MySQL,
// MONGO_URI for MongoDB, otherwise an embedded BuntDB file.
func newRepository() (core.Repository, func(), error) {
	if dsn := os.Getenv("DSN"); dsn != "" {
		fmt.Printf("using DSN: %s\n", dsn)
		repo, err := store.NewGorm(dsn, 10)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		repo, err := store.NewMongo(uri, "timekeep")
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close(context.Background()) }, nil
	}

	path := os.Getenv("BUNT_PATH")
	if path == "" {
		path = "timekeep.db"
	}
	repo, err := store.NewBunt(path)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { repo.Close() }, nil
}

// loadPolicy prefers a local file and falls back to SSM.
func loadPolicy(ctx context.Context) (devops.PolicyConfig, error) {
	if path := os.Getenv("POLICY_FILE"); path != "" {
		return devops.LoadPolicyFile(path)
	}
	return devops.LoadPolicyConfig(ctx)
}

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	repo, closeRepo, err := newRepository()
	if err != nil {
		log.Fatal(err)
	}
	defer closeRepo()

	policy, err := loadPolicy(ctx)
	if err != nil {
		logger.Warn("policy load failed, using defaults", slog.String("error", err.Error()))
		policy = devops.PolicyConfig{}
	}

	svc := core.NewService(repo, core.NewBroadcaster(), logger, policy.EngineConfig())

	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api/timekeep/v1.0")
	attendance.Register(api, svc)

	r.Run("0.0.0.0:8090")
}
