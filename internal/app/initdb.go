package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"shopinventory/internal/domain"
	"shopinventory/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "shopinventory"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default super admin password", zap.Error(err))
		return
	}

	var user domain.SysUser
	err = a.gormDB.Where("username = ?", superUsername).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Password:  string(hashed),
			Admin:     true,
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetAdmin := !user.Admin
	resetStatus := !strings.EqualFold(user.Status, common.ENABLED)
	if !resetAdmin && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetAdmin {
		updates["admin"] = true
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("adminReset", resetAdmin),
		zap.Bool("statusEnabled", resetStatus))
}

// defaultSettings lists the settings seeded on first start. Values already
// present in sys_config are left alone.
var defaultSettings = []domain.SysConfig{
	{Sort: 1, Type: SettingsSystem, Name: SettingsAdminPassphrase, Value: "", Remark: "Shared passphrase required to sign up a new admin"},
	{Sort: 2, Type: SettingsSystem, Name: SettingsSiteTitle, Value: "Fake Store", Remark: "Catalog site title"},
}

func (a *Application) checkSettings() {
	for _, s := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", s.Type, s.Name).
			Count(&count)
		if count > 0 {
			continue
		}

		value := s.Value
		if s.Name == SettingsAdminPassphrase && value == "" {
			value = os.Getenv("SHOPINV_ADMIN_PASSPHRASE")
			if value == "" {
				value = "letmein-admin"
				zap.L().Warn("admin signup passphrase not configured, using built-in default")
			}
		}

		a.gormDB.Create(&domain.SysConfig{
			ID:     common.UUIDint64(),
			Sort:   s.Sort,
			Type:   s.Type,
			Name:   s.Name,
			Value:  value,
			Remark: s.Remark,
		})
		zap.L().Info("initialized config",
			zap.String("key", s.Type+"."+s.Name))
	}
}
