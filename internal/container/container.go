// Package container wires the application graph: database, caches,
// repositories, services and the feed fetcher.
package container

import (
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/cache"
	"github.com/avesovich/reporting-with-rss-news/internal/config"
	"github.com/avesovich/reporting-with-rss-news/internal/database"
	"github.com/avesovich/reporting-with-rss-news/internal/feed"
	"github.com/avesovich/reporting-with-rss-news/internal/policy"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container holds every constructed dependency.
type Container struct {
	db       *gorm.DB
	location *time.Location
	tokens   *auth.TokenIssuer
	oracle   *auth.DBRoleOracle
	policy   *policy.Policy

	users    repository.UserRepository
	articles repository.ArticleRepository
	comments repository.CommentRepository
	news     repository.NewsRepository

	articleSvc service.ArticleService
	commentSvc service.CommentService
	userSvc    service.UserService
	statsSvc   service.StatsService
	chartSvc   service.ChartService
	newsSvc    service.NewsService
	exportSvc  service.ExportService
	imageSvc   service.ImageService

	fetcher *feed.Fetcher
}

// NewContainer builds the application graph from configuration.
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	db, err := database.ConnectWithRetry(cfg.Database, config.IsProduction(cfg), 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.App.Timezone, err)
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Second)
	oracle := auth.NewDBRoleOracle(db, time.Duration(cfg.Auth.RoleCacheTTL)*time.Second)
	pol := policy.New(oracle)

	statsTTL := time.Duration(cfg.Cache.StatsTTL) * time.Second
	newsTTL := time.Duration(cfg.Cache.NewsTTL) * time.Second
	// Separate stores: the news cache is flushed wholesale after each
	// feed refresh, which must not evict the stat counters.
	statsStore := cache.NewMemoryStore(statsTTL)
	newsStore := cache.NewMemoryStore(newsTTL)

	statsSvc := service.NewStatsService(db, statsStore, statsTTL, location)

	articles := repository.NewArticleRepository(db, statsSvc.Invalidate)
	comments := repository.NewCommentRepository(db)
	users := repository.NewUserRepository(db)
	news := repository.NewNewsRepository(db)

	articleSvc := service.NewArticleService(articles, comments, pol, oracle, location, logger)
	commentSvc := service.NewCommentService(comments, articles, pol, logger)
	userSvc := service.NewUserService(users, pol, oracle, tokens, logger)
	chartSvc := service.NewChartService(db, location)
	newsSvc := service.NewNewsService(news, newsStore, newsTTL, location)
	exportSvc := service.NewExportService(articles, pol)

	imageSvc, err := service.NewImageService(cfg.App.UploadDir, pol)
	if err != nil {
		return nil, err
	}

	fetcher := feed.NewFetcher(news, feed.NewImageExtractor(nil),
		feed.DefaultSources, location, logger, newsSvc.InvalidateListing)

	return &Container{
		db:         db,
		location:   location,
		tokens:     tokens,
		oracle:     oracle,
		policy:     pol,
		users:      users,
		articles:   articles,
		comments:   comments,
		news:       news,
		articleSvc: articleSvc,
		commentSvc: commentSvc,
		userSvc:    userSvc,
		statsSvc:   statsSvc,
		chartSvc:   chartSvc,
		newsSvc:    newsSvc,
		exportSvc:  exportSvc,
		imageSvc:   imageSvc,
		fetcher:    fetcher,
	}, nil
}

func (c *Container) DB() *gorm.DB                          { return c.db }
func (c *Container) Location() *time.Location              { return c.location }
func (c *Container) Tokens() *auth.TokenIssuer             { return c.tokens }
func (c *Container) Oracle() *auth.DBRoleOracle            { return c.oracle }
func (c *Container) Policy() *policy.Policy                { return c.policy }
func (c *Container) Users() repository.UserRepository      { return c.users }
func (c *Container) ArticleService() service.ArticleService { return c.articleSvc }
func (c *Container) CommentService() service.CommentService { return c.commentSvc }
func (c *Container) UserService() service.UserService      { return c.userSvc }
func (c *Container) StatsService() service.StatsService    { return c.statsSvc }
func (c *Container) ChartService() service.ChartService    { return c.chartSvc }
func (c *Container) NewsService() service.NewsService      { return c.newsSvc }
func (c *Container) ExportService() service.ExportService  { return c.exportSvc }
func (c *Container) ImageService() service.ImageService    { return c.imageSvc }
func (c *Container) Fetcher() *feed.Fetcher                { return c.fetcher }

// Close releases held resources.
func (c *Container) Close() error {
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return nil
}
