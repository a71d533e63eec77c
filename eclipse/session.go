package eclipse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/models"
	"github.com/tjwells85/whs_backend/utils"
	"gorm.io/gorm"
)

const sessionRedisKey = "EclipseSession:current"

// GetSession returns the cached Eclipse session, logging in when no valid
// one exists. The redis mirror avoids a DB read on every sync tick.
func GetSession(ctx context.Context, client *Client) (*models.EclipseSession, error) {
	var cached *models.EclipseSession
	if ok, err := config.GetRedisObject(sessionRedisKey, &cached); err == nil && ok && cached != nil {
		return cached, nil
	}

	var session models.EclipseSession
	err := config.GetDB().WithContext(ctx).
		Where("is_valid = ?", true).
		Take(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Login(ctx, client)
		}
		return nil, err
	}

	_ = config.SetRedisObject(sessionRedisKey, &session, time.Hour)
	return &session, nil
}

// Login authenticates against Eclipse and replaces the stored session.
func Login(ctx context.Context, client *Client) (*models.EclipseSession, error) {
	before := time.Now()
	resp, status, err := client.createSession(ctx)
	after := time.Now()

	if err != nil {
		_ = models.CreateLogEntry(ctx, &models.LogEntry{
			Message:    fmt.Sprintf("Failed to login to Eclipse API: %s", err.Error()),
			Type:       models.LogTypeError,
			HttpStatus: strconv.Itoa(status),
			Module:     "eclipse",
			FuncName:   "Login",
			Time:       utils.FnSeconds(before, after),
		})
		return nil, err
	}

	db := config.GetDB().WithContext(ctx)
	if err := db.Where("1 = 1").Delete(&models.EclipseSession{}).Error; err != nil {
		return nil, err
	}

	session := models.EclipseSession{
		SessionId:               resp.ID,
		SessionToken:            resp.SessionToken,
		RefreshToken:            resp.RefreshToken,
		ApplicationKey:          resp.ApplicationKey,
		DeveloperKey:            resp.DeveloperKey,
		ClientDescription:       resp.ClientDescription,
		DeviceId:                resp.DeviceId,
		WorkstationId:           resp.WorkstationId,
		PrinterLocationId:       resp.PrinterLocationId,
		ValidPrinterLocationIds: resp.ValidPrinterLocationIds,
		CreationDateTime:        parseEclipseTime(resp.CreationDateTime),
		LastUsedDateTime:        parseEclipseTime(resp.LastUsedDateTime),
		IsValid:                 utils.NewTrue(),
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(sessionRedisKey, &session, time.Hour)
	_ = models.CreateLogEntry(ctx, &models.LogEntry{
		Message:    "Logged into Eclipse API",
		Type:       models.LogTypeSuccess,
		HttpStatus: strconv.Itoa(status),
		Module:     "eclipse",
		FuncName:   "Login",
		Time:       utils.FnSeconds(before, after),
	})
	return &session, nil
}

// InvalidateSessions marks every stored session unusable and drops the
// redis mirror. The next GetSession call will re-login.
func InvalidateSessions(ctx context.Context) error {
	if err := config.GetDB().WithContext(ctx).
		Model(&models.EclipseSession{}).
		Where("is_valid = ?", true).
		Update("is_valid", false).Error; err != nil {
		return err
	}
	return config.RemoveRedisKey(sessionRedisKey)
}

// WithSession runs fn with a valid session token. On failure the session is
// refreshed once with a forced re-login and fn is retried; a second failure
// is returned to the caller.
func WithSession(ctx context.Context, client *Client, fn func(token string) error) error {
	session, err := GetSession(ctx, client)
	if err != nil {
		return err
	}
	if err := fn(session.SessionToken); err == nil {
		return nil
	}

	if err := InvalidateSessions(ctx); err != nil {
		return err
	}
	session, err = Login(ctx, client)
	if err != nil {
		return err
	}
	return fn(session.SessionToken)
}
