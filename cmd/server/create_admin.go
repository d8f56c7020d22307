package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
	"github.com/mzaraf/vms/internal/service"
	apperrors "github.com/mzaraf/vms/pkg/errors"
)

const minPasswordLen = 8

var (
	adminEmail    string
	adminPassword string
	adminUsername string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(adminPassword) < minPasswordLen {
			return fmt.Errorf("密码长度不能少于 %d 位", minPasswordLen)
		}

		_, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer closeDB(db)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		userSvc := service.NewUserService(repository.NewRepository(db), logger)
		user, err := userSvc.Create(ctx, &dto.CreateUserRequest{
			Username:             adminUsername,
			Email:                adminEmail,
			Password:             adminPassword,
			PasswordConfirmation: adminPassword,
			Role:                 model.RoleAdmin,
		})
		if err != nil {
			if ve, ok := apperrors.AsValidation(err); ok {
				return fmt.Errorf("创建管理员失败: %s", ve.Error())
			}
			return fmt.Errorf("创建管理员失败: %w", err)
		}

		logger.Info("管理员已创建", zap.String("user_id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "管理员邮箱")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "管理员密码（至少 8 位）")
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "用户名（默认与邮箱相同）")
	createAdminCmd.MarkFlagRequired("email")
	createAdminCmd.MarkFlagRequired("password")
}
