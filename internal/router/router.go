// Package router exposes the shopping-list service over a JSON REST API.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/shoplist/internal/gzippedhttp"
	"github.com/patric-chuzhbe/shoplist/internal/logger"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
	LogIn(response http.ResponseWriter, userID int64) error
	LogOut(response http.ResponseWriter)
}

type trustedSubnetGuard interface {
	OnlyTrusted(h http.Handler) http.Handler
}

type metricsCollector interface {
	InstrumentHandler(next http.Handler) http.Handler
	Handler() http.Handler
}

type shoplist interface {
	Register(ctx context.Context, request models.RegisterRequest) (*user.User, error)
	Login(ctx context.Context, request models.LoginRequest) (*user.User, error)
	GetUser(ctx context.Context, id int64) (*user.User, error)
	UpdateProfile(ctx context.Context, actorID, targetID int64, patch user.Patch) (*user.User, error)

	GetUserLists(ctx context.Context, userID int64) ([]models.ShoppingList, error)
	CreateList(ctx context.Context, userID int64, request models.CreateListRequest) (*models.ShoppingList, error)
	GetList(ctx context.Context, userID, listID int64) (*models.ShoppingList, error)
	UpdateList(ctx context.Context, userID, listID int64, patch models.ListPatch) (*models.ShoppingList, error)
	DeleteList(ctx context.Context, userID, listID int64) error

	GetListItems(ctx context.Context, userID, listID int64) ([]models.ListItem, error)
	CreateListItem(ctx context.Context, userID, listID int64, request models.CreateItemRequest) (*models.ListItem, error)
	UpdateListItem(ctx context.Context, userID, listID, itemID int64, patch models.ItemPatch) (*models.ListItem, error)
	DeleteListItem(ctx context.Context, userID, listID, itemID int64) error

	GetListParticipants(ctx context.Context, userID, listID int64) ([]user.User, error)
	ShareList(ctx context.Context, ownerID, listID int64, email string) (*models.ListParticipant, error)
	RemoveParticipant(ctx context.Context, ownerID, listID, participantUserID int64) error

	GetStats(ctx context.Context) (models.Stats, error)
	Ping(ctx context.Context) error
}

type Router struct {
	service  shoplist
	auth     authenticator
	validate *validator.Validate
}

// New builds the HTTP handler. metrics may be nil.
func New(
	service shoplist,
	auth authenticator,
	trustedSubnet trustedSubnetGuard,
	metrics metricsCollector,
) *chi.Mux {
	myRouter := Router{
		service:  service,
		auth:     auth,
		validate: newValidator(),
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	if metrics != nil {
		router.Use(metrics.InstrumentHandler)
	}
	router.Use(
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	if metrics != nil {
		router.Method(http.MethodGet, `/metrics`, metrics.Handler())
	}

	router.NotFound(func(response http.ResponseWriter, request *http.Request) {
		writeJSON(response, http.StatusNotFound, models.ErrorResponse{Message: "route not found"})
	})
	router.MethodNotAllowed(func(response http.ResponseWriter, request *http.Request) {
		writeJSON(response, http.StatusMethodNotAllowed, models.ErrorResponse{Message: "method not allowed"})
	})

	router.Get(`/ping`, myRouter.GetPing)

	router.Route(`/api`, func(r chi.Router) {
		r.Post(`/register`, myRouter.PostApiregister)
		r.Post(`/login`, myRouter.PostApilogin)
		r.Post(`/logout`, myRouter.PostApilogout)

		r.With(trustedSubnet.OnlyTrusted).Get(`/internal/stats`, myRouter.GetApiinternalstats)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticateUser)

			r.Get(`/user`, myRouter.GetApiuser)
			r.Put(`/users/{id}`, myRouter.PutApiuser)

			r.Get(`/lists`, myRouter.GetApilists)
			r.Post(`/lists`, myRouter.PostApilists)
			r.Get(`/lists/{id}`, myRouter.GetApilist)
			r.Put(`/lists/{id}`, myRouter.PutApilist)
			r.Delete(`/lists/{id}`, myRouter.DeleteApilist)

			r.Get(`/lists/{listId}/items`, myRouter.GetApilistitems)
			r.Post(`/lists/{listId}/items`, myRouter.PostApilistitems)
			r.Put(`/lists/{listId}/items/{itemId}`, myRouter.PutApilistitem)
			r.Delete(`/lists/{listId}/items/{itemId}`, myRouter.DeleteApilistitem)

			r.Get(`/lists/{listId}/participants`, myRouter.GetApilistparticipants)
			r.Post(`/lists/{listId}/share`, myRouter.PostApilistshare)
			r.Delete(`/lists/{listId}/participants/{participantId}`, myRouter.DeleteApilistparticipant)
		})
	})

	return router
}
