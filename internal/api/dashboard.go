package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/domain" // Summary aggregation
	"finance_tracker/internal/utils"  // Dashboard cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// DashboardHandler returns the user's summary, served from the cache when
// possible and recomputed from the records otherwise.
func DashboardHandler(expenses RecordStore[domain.Expense, *domain.Expense], incomes RecordStore[domain.Income, *domain.Income], cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authUser(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.DashboardCacheKey(userID) // Cache key for this user

		var summary domain.Summary
		if found, err := cache.Get(ctx, cacheKey, &summary); err == nil && found {
			respondData(c, http.StatusOK, "", summary) // Serve from cache
			return
		} else if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Dashboard cache read failed")
		}

		expenseList, err := expenses.List(ctx, userID)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Loading expenses failed")
			respondError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
			return
		}
		incomeList, err := incomes.List(ctx, userID)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Loading incomes failed")
			respondError(c, http.StatusInternalServerError, "Failed to fetch dashboard data")
			return
		}

		summary = domain.Summarize(expenseList, incomeList)
		if err := cache.Set(ctx, cacheKey, summary, utils.DashboardCacheTTL); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Dashboard cache write failed")
		}
		respondData(c, http.StatusOK, "", summary)
	}
}

// HealthHandler reports liveness
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "message": "Expense Tracker API is running"})
	}
}
