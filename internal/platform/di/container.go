package di

import (
	"context"
	"log"
	"net/http"
	"strings"

	httpin "goaltickets/internal/adapters/in/http"
	"goaltickets/internal/adapters/in/http/handler"
	"goaltickets/internal/adapters/in/http/middleware"
	dbadapter "goaltickets/internal/adapters/out/db"
	fsadapter "goaltickets/internal/adapters/out/firestore"
	"goaltickets/internal/adapters/out/mail"
	"goaltickets/internal/adapters/out/memory"
	"goaltickets/internal/adapters/out/telegram"
	usecase "goaltickets/internal/application/usecase"
	cartdom "goaltickets/internal/domain/cart"
)

// Container wires repositories, usecases and handlers.
type Container struct {
	Infra *Infra

	CartRepo    cartdom.Repository
	CartUC      *usecase.CartUsecase
	NotifyUC    *usecase.NotifyUsecase
	RootHandler http.Handler
}

// NewContainer builds the full request-serving graph.
func NewContainer(ctx context.Context, inf *Infra) *Container {
	cfg := inf.Config

	// Repository per backend (infra already validated the selection).
	var repo cartdom.Repository
	switch strings.TrimSpace(strings.ToLower(cfg.CartBackend)) {
	case "firestore":
		repo = fsadapter.NewCartRepositoryFS(inf.Firestore)
	case "postgres":
		repo = dbadapter.NewCartRepositoryPG(inf.DB)
	default:
		repo = memory.NewCartRepositoryMem()
	}

	policy := cartdom.ParseMergePolicy(cfg.CartMergePolicy)
	log.Printf("[di.container] cart store backend=%s mergePolicy=%s", cfg.CartBackend, policy)

	cartUC := usecase.NewCartUsecase(repo, policy)

	// Notifiers: Telegram when token+chat resolve, email when SendGrid is set.
	var notifiers []usecase.Notifier
	if token := inf.TelegramToken(ctx); token != "" && strings.TrimSpace(cfg.TelegramChatID) != "" {
		notifiers = append(notifiers, telegram.NewNotifier(token, cfg.TelegramChatID))
		log.Printf("[di.container] telegram notifier configured chat=%s", cfg.TelegramChatID)
	} else {
		log.Printf("[di.container] telegram notifier not configured")
	}
	if strings.TrimSpace(cfg.SendGridAPIKey) != "" {
		notifiers = append(notifiers, mail.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.AlertMailFrom, cfg.AlertMailTo))
		log.Printf("[di.container] sendgrid notifier configured to=%s", cfg.AlertMailTo)
	}
	notifyUC := usecase.NewNotifyUsecase(notifiers...)

	mux := http.NewServeMux()
	httpin.Register(mux, httpin.Deps{
		Cart:   handler.NewCartHandler(cartUC),
		Notify: handler.NewNotifyHandler(notifyUC),
		Health: handler.NewHealthHandler(),
	})

	// Chain order matters: Recover innermost so CORS headers survive a panic.
	root := middleware.CORS(cfg.AllowedOrigin, middleware.Recover(mux))

	return &Container{
		Infra:       inf,
		CartRepo:    repo,
		CartUC:      cartUC,
		NotifyUC:    notifyUC,
		RootHandler: root,
	}
}
