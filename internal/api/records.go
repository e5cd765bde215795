package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"finance_tracker/internal/middleware" // Authenticated user lookup
	"finance_tracker/internal/repository" // Repository sentinels
	"finance_tracker/internal/utils"      // Dashboard cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RecordHandlers serves list/create/update/delete for one record kind
type RecordHandlers[T any, P recordPtr[T]] struct {
	Store RecordStore[T, P]
	Cache utils.Cache // Dashboard cache invalidated on every mutation
	Name  string      // Singular display name, e.g. "Expense"
}

// invalidate drops the user's cached dashboard summary
func (h *RecordHandlers[T, P]) invalidate(c *gin.Context, userID uint) {
	if err := h.Cache.Delete(c.Request.Context(), utils.DashboardCacheKey(userID)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Dashboard cache invalidation failed")
	}
}

// authUser returns the authenticated user id or writes a 401
func authUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

// recordID parses the :id path parameter or writes a 400
func recordID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// bind decodes and validates the request body into a new record
func (h *RecordHandlers[T, P]) bind(c *gin.Context) (P, bool) {
	rec := P(new(T))
	if err := c.ShouldBindJSON(rec); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request")
		return nil, false
	}
	if errs := rec.Validate(); len(errs) > 0 {
		respondValidation(c, errs)
		return nil, false
	}
	return rec, true
}

// List returns every record of the authenticated user
func (h *RecordHandlers[T, P]) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authUser(c)
		if !ok {
			return
		}
		records, err := h.Store.List(c.Request.Context(), userID)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Listing records failed")
			respondError(c, http.StatusInternalServerError, "Failed to fetch records")
			return
		}
		if records == nil {
			records = []T{} // Always a JSON array
		}
		respondData(c, http.StatusOK, "", records)
	}
}

// Create adds a record for the authenticated user
func (h *RecordHandlers[T, P]) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authUser(c)
		if !ok {
			return
		}
		rec, ok := h.bind(c)
		if !ok {
			return
		}
		if err := h.Store.Create(c.Request.Context(), userID, rec); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Creating record failed")
			respondError(c, http.StatusInternalServerError, "Failed to save "+h.Name)
			return
		}
		h.invalidate(c, userID)
		respondData(c, http.StatusCreated, h.Name+" added!", rec)
	}
}

// Update replaces the editable fields of one of the user's records
func (h *RecordHandlers[T, P]) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authUser(c)
		if !ok {
			return
		}
		id, ok := recordID(c)
		if !ok {
			return
		}
		rec, ok := h.bind(c)
		if !ok {
			return
		}
		if err := h.Store.Update(c.Request.Context(), userID, id, rec); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(c, http.StatusNotFound, h.Name+" not found")
				return
			}
			logrus.WithFields(logrus.Fields{"user_id": userID, "id": id, "error": err.Error()}).Error("Updating record failed")
			respondError(c, http.StatusInternalServerError, "Failed to save "+h.Name)
			return
		}
		h.invalidate(c, userID)
		respondData(c, http.StatusOK, h.Name+" updated!", rec)
	}
}

// Delete removes one of the user's records
func (h *RecordHandlers[T, P]) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authUser(c)
		if !ok {
			return
		}
		id, ok := recordID(c)
		if !ok {
			return
		}
		if err := h.Store.Delete(c.Request.Context(), userID, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				respondError(c, http.StatusNotFound, h.Name+" not found")
				return
			}
			logrus.WithFields(logrus.Fields{"user_id": userID, "id": id, "error": err.Error()}).Error("Deleting record failed")
			respondError(c, http.StatusInternalServerError, "Failed to delete "+h.Name)
			return
		}
		h.invalidate(c, userID)
		c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "message": h.Name + " deleted!"})
	}
}
