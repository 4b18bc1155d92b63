package router

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/shoplist/internal/auth"
	"github.com/patric-chuzhbe/shoplist/internal/logger"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

// currentUserID is set by the auth middleware; a missing id means the
// handler was mounted outside the authenticated group.
func currentUserID(response http.ResponseWriter, request *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeJSON(response, http.StatusUnauthorized, models.ErrorResponse{Message: "authentication required"})
	}

	return userID, ok
}

func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.service.Ping(request.Context()); err != nil {
		logger.FromContext(request.Context()).Errorw("Error calling the `router.service.Ping()`", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func (router *Router) PostApiregister(response http.ResponseWriter, request *http.Request) {
	var payload models.RegisterRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	usr, err := router.service.Register(request.Context(), payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	if err := router.auth.LogIn(response, usr.ID); err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, usr)
}

func (router *Router) PostApilogin(response http.ResponseWriter, request *http.Request) {
	var payload models.LoginRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	usr, err := router.service.Login(request.Context(), payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	if err := router.auth.LogIn(response, usr.ID); err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) PostApilogout(response http.ResponseWriter, request *http.Request) {
	router.auth.LogOut(response)
	writeMessage(response, http.StatusOK, "logged out")
}

func (router *Router) GetApiuser(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}

	usr, err := router.service.GetUser(request.Context(), userID)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) PutApiuser(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	targetID, err := pathID(request, "id")
	if err != nil {
		writeError(response, request, err)
		return
	}

	var payload models.UpdateUserRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	usr, err := router.service.UpdateProfile(request.Context(), userID, targetID, payload.Patch())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) GetApilists(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}

	lists, err := router.service.GetUserLists(request.Context(), userID)
	if err != nil {
		writeError(response, request, err)
		return
	}
	if lists == nil {
		lists = []models.ShoppingList{}
	}

	writeJSON(response, http.StatusOK, lists)
}

func (router *Router) PostApilists(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}

	var payload models.CreateListRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	list, err := router.service.CreateList(request.Context(), userID, payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, list)
}

func (router *Router) GetApilist(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "id")
	if err != nil {
		writeError(response, request, err)
		return
	}

	list, err := router.service.GetList(request.Context(), userID, listID)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, list)
}

func (router *Router) PutApilist(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "id")
	if err != nil {
		writeError(response, request, err)
		return
	}

	var payload models.UpdateListRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	list, err := router.service.UpdateList(request.Context(), userID, listID, payload.Patch())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, list)
}

func (router *Router) DeleteApilist(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "id")
	if err != nil {
		writeError(response, request, err)
		return
	}

	if err := router.service.DeleteList(request.Context(), userID, listID); err != nil {
		writeError(response, request, err)
		return
	}

	writeMessage(response, http.StatusOK, "shopping list deleted")
}

func (router *Router) GetApilistitems(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "listId")
	if err != nil {
		writeError(response, request, err)
		return
	}

	items, err := router.service.GetListItems(request.Context(), userID, listID)
	if err != nil {
		writeError(response, request, err)
		return
	}
	if items == nil {
		items = []models.ListItem{}
	}

	writeJSON(response, http.StatusOK, items)
}

func (router *Router) PostApilistitems(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "listId")
	if err != nil {
		writeError(response, request, err)
		return
	}

	var payload models.CreateItemRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	item, err := router.service.CreateListItem(request.Context(), userID, listID, payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, item)
}

func (router *Router) PutApilistitem(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "listId")
	if err != nil {
		writeError(response, request, err)
		return
	}
	itemID, err := pathID(request, "itemId")
	if err != nil {
		writeError(response, request, err)
		return
	}

	var payload models.UpdateItemRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	item, err := router.service.UpdateListItem(request.Context(), userID, listID, itemID, payload.Patch())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, item)
}

func (router *Router) DeleteApilistitem(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "listId")
	if err != nil {
		writeError(response, request, err)
		return
	}
	itemID, err := pathID(request, "itemId")
	if err != nil {
		writeError(response, request, err)
		return
	}

	if err := router.service.DeleteListItem(request.Context(), userID, listID, itemID); err != nil {
		writeError(response, request, err)
		return
	}

	writeMessage(response, http.StatusOK, "list item deleted")
}

func (router *Router) GetApilistparticipants(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "listId")
	if err != nil {
		writeError(response, request, err)
		return
	}

	participants, err := router.service.GetListParticipants(request.Context(), userID, listID)
	if err != nil {
		writeError(response, request, err)
		return
	}
	if participants == nil {
		participants = []user.User{}
	}

	writeJSON(response, http.StatusOK, participants)
}

func (router *Router) PostApilistshare(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "listId")
	if err != nil {
		writeError(response, request, err)
		return
	}

	var payload models.ShareListRequest
	if err := router.decodeBody(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	participant, err := router.service.ShareList(request.Context(), userID, listID, payload.Email)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, participant)
}

func (router *Router) DeleteApilistparticipant(response http.ResponseWriter, request *http.Request) {
	userID, ok := currentUserID(response, request)
	if !ok {
		return
	}
	listID, err := pathID(request, "listId")
	if err != nil {
		writeError(response, request, err)
		return
	}
	participantID, err := pathID(request, "participantId")
	if err != nil {
		writeError(response, request, err)
		return
	}

	if err := router.service.RemoveParticipant(request.Context(), userID, listID, participantID); err != nil {
		writeError(response, request, err)
		return
	}

	writeMessage(response, http.StatusOK, "participant removed")
}

func (router *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.service.GetStats(request.Context())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}
