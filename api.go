package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tjwells85/whs_backend/middlewares"
	"github.com/tjwells85/whs_backend/models"
	"github.com/tjwells85/whs_backend/utils"
	"github.com/tjwells85/whs_backend/whsync"
	"gorm.io/gorm"
)

func registerRoutes(r *gin.Engine, scheduler *whsync.Scheduler) {
	api := r.Group("/api")

	api.POST("/auth/login", loginHandler)

	authed := api.Group("", middlewares.RequireAuth())
	authed.GET("/auth/me", meHandler)

	authed.GET("/branches", listBranchesHandler)
	authed.GET("/branches/:id", getBranchHandler)
	authed.GET("/branches/:id/tasks", branchTasksHandler)
	authed.GET("/branches/:id/stats/current", currentStatsHandler)
	authed.GET("/branches/:id/stats", statsRangeHandler)

	authed.GET("/holidays", listHolidaysHandler)
	authed.GET("/holidays/:id", getHolidayHandler)
	authed.GET("/shipvias", listShipViasHandler)
	authed.GET("/logs", recentLogsHandler)
	authed.GET("/sync/status", scheduler.StatusHandler)

	admin := api.Group("", middlewares.RequireAuth(), middlewares.AdminOnly())
	admin.POST("/auth/register", registerHandler)
	admin.POST("/branches", createBranchHandler)
	admin.PUT("/branches/:id", updateBranchHandler)
	admin.DELETE("/branches/:id", deleteBranchHandler)
	admin.POST("/holidays", createHolidayHandler)
	admin.PUT("/holidays/:id", updateHolidayHandler)
	admin.DELETE("/holidays/:id", deleteHolidayHandler)
	admin.POST("/shipvias", createShipViaHandler)
	admin.PUT("/shipvias/:id", updateShipViaHandler)
	admin.POST("/sync/run", scheduler.TriggerHandler)
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}

	user, err := models.AuthenticateUser(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	token, err := utils.JwtGenerate(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func meHandler(c *gin.Context) {
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	user, err := models.GetUserById(c.Request.Context(), userId)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func registerHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func listBranchesHandler(c *gin.Context) {
	branches, err := models.GetAllBranches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, branches)
}

func getBranchHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	branch, err := models.GetBranchById(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func createBranchHandler(c *gin.Context) {
	var input models.NewBranch
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}
	branch, err := models.CreateBranch(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create branch"})
		return
	}
	c.JSON(http.StatusCreated, branch)
}

func updateBranchHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input models.NewBranch
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}
	branch, err := models.UpdateBranch(c.Request.Context(), id, &input)
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func deleteBranchHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := models.DeleteBranch(c.Request.Context(), id); err != nil {
		respondLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// branchTasksHandler serves the pick board views. The :id parameter is the
// Eclipse branch id (for example WHS1), not the row id.
func branchTasksHandler(c *gin.Context) {
	tasks, err := models.GetTasksForBranch(c.Request.Context(), c.Param("id"), c.Query("view"))
	if err != nil {
		if errors.Is(err, models.ErrUnknownTaskView) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func currentStatsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	stat, err := models.FindCurrentStat(ctx, c.Param("id"), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no current stats for branch"})
		return
	}
	shipVias, err := models.GetAllShipVias(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, whsync.ParseStats(stat, shipVias))
}

// statsRangeHandler returns per-day summaries for [from, to]. With
// combine=true the days collapse into one range summary.
func statsRangeHandler(c *gin.Context) {
	ctx := c.Request.Context()

	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		// Include the whole named day.
		to = parsed.AddDate(0, 0, 1)
	}

	stats, err := models.GetStatsInRange(ctx, c.Param("id"), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	shipVias, err := models.GetAllShipVias(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("combine") == "true" {
		c.JSON(http.StatusOK, whsync.CombineStats(stats, shipVias))
		return
	}

	parsed := make([]whsync.ParsedStats, 0, len(stats))
	for i := range stats {
		parsed = append(parsed, whsync.ParseStats(&stats[i], shipVias))
	}
	c.JSON(http.StatusOK, parsed)
}

func listHolidaysHandler(c *gin.Context) {
	holidays, err := models.GetHolidays(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, holidays)
}

func getHolidayHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	holiday, err := models.GetHoliday(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, holiday)
}

func createHolidayHandler(c *gin.Context) {
	var input models.NewHoliday
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}
	if !input.End.After(input.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}
	holiday, err := models.CreateHoliday(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, holiday)
}

func updateHolidayHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input models.NewHoliday
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}
	if !input.End.After(input.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}
	holiday, err := models.UpdateHoliday(c.Request.Context(), id, &input)
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, holiday)
}

func deleteHolidayHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := models.DeleteHoliday(c.Request.Context(), id); err != nil {
		respondLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listShipViasHandler(c *gin.Context) {
	shipVias, err := models.GetAllShipVias(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, shipVias)
}

func createShipViaHandler(c *gin.Context) {
	var input models.NewShipVia
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}
	shipVia, err := models.CreateShipVia(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create ship via"})
		return
	}
	c.JSON(http.StatusCreated, shipVia)
}

func updateShipViaHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input models.NewShipVia
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.BindingErrorMessage(err)})
		return
	}
	shipVia, err := models.UpdateShipVia(c.Request.Context(), id, &input)
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipVia)
}

func recentLogsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := models.GetRecentLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}

func respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
