package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"recipehub/apperr"
	"recipehub/utils"
)

func RoutesWrapper(router *httprouter.Router, d Deps) {
	AddHealthRoutes(router, d)
	AddStaticRoutes(router, d.StaticDir)
	AddAuthRoutes(router, d)
	AddUserRoutes(router, d)
	AddPostRoutes(router, d)
	AddCommentsRoutes(router, d)
}

// New builds the router with every route and JSON 404/405 responses.
func New(d Deps) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, r, apperr.NotFound("Route not found"))
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusMethodNotAllowed, utils.Envelope{Message: "Method not allowed"})
	})
	RoutesWrapper(router, d)
	return router
}
