package controller

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/alekreuaya/lucky-naga/auth"
	"github.com/alekreuaya/lucky-naga/config"
	"github.com/alekreuaya/lucky-naga/model"
	"github.com/alekreuaya/lucky-naga/storage"
	"github.com/alekreuaya/lucky-naga/utils"
	"github.com/alekreuaya/lucky-naga/wheel"
)

const statsHistorySize = 200

func AdminLogin(c *fiber.Ctx) error {
	type FormData struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	formData := new(FormData)
	if err := c.BodyParser(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	if err := Validate.Struct(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	account, err := Store.FindAdmin(c.Context(), formData.Username)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Login failed", utils.Logger{
				LogLevel:    utils.CRITICAL,
				Message:     fmt.Sprintf("AdminLogin: Unable to get account data, Username:%s, err:%v", formData.Username, err),
				ServiceName: config.ServiceName,
			})
		}
		// same response as a wrong password; no account probing
		return utils.JsonErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(formData.Password)); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	token, err := Tokens.Sign(account.Username, account.Role)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Login failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     fmt.Sprintf("AdminLogin: Unable to sign token, Username:%s, err:%v", formData.Username, err),
			ServiceName: config.ServiceName,
		})
	}
	return c.JSON(fiber.Map{"token": token, "role": account.Role, "message": "Login successful"})
}

func ChangePassword(c *fiber.Ctx) error {
	claims, err := Tokens.FromRequest(c, model.RoleAdmin)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	type FormData struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}
	formData := new(FormData)
	if err := c.BodyParser(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	if err := Validate.Struct(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	if len(formData.NewPassword) < 6 {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Password must be at least 6 characters")
	}
	account, err := Store.FindAdmin(c.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return utils.JsonErrorResponse(c, fiber.StatusForbidden, "Account data is not valid")
		}
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Change password failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "ChangePassword: Unable to verify account info, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(formData.CurrentPassword)); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusNotAcceptable, "Current password is incorrect")
	}
	hash, err := utils.HashPassword(formData.NewPassword)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Change password failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "ChangePassword: Unable to hash password, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	if err := Store.UpdateAdminPassword(c.Context(), claims.Username, hash); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Change password failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     fmt.Sprintf("ChangePassword: Unable to change password for %s! Err: %s", claims.Username, err.Error()),
			ServiceName: config.ServiceName,
		})
	}
	return c.JSON(fiber.Map{"status": fiber.StatusOK, "message": "Password changed successfully"})
}

func CreateAdmin(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleMaster)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	type FormData struct {
		Username string `json:"username" validate:"required,min=1,max=100,alphanum"`
		Password string `json:"password" validate:"required,min=6,max=50"`
	}
	formData := new(FormData)
	if err := c.BodyParser(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	if err := Validate.Struct(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Provided data are not valid")
	}
	hash, err := utils.HashPassword(formData.Password)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Create admin failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "CreateAdmin: Unable to hash password, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	account := &model.AdminAccount{
		Username:     formData.Username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := Store.InsertAdmin(c.Context(), account); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return utils.JsonErrorResponse(c, fiber.StatusConflict, fmt.Sprintf("Unable to save data, %s already exists", formData.Username))
		}
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Unable to save data, system error. please try again later", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     fmt.Sprintf("CreateAdmin: Unable to save data, Username:%s, err:%v", formData.Username, err),
			ServiceName: config.ServiceName,
		})
	}
	return c.JSON(fiber.Map{"status": fiber.StatusOK, "message": "Admin account added successfully"})
}

func GetAdmins(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleMaster)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	accounts, err := Store.ListAdmins(c.Context())
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Get admins failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "GetAdmins: Unable to get accounts, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	// password hashes are excluded by the model's json tags
	return c.JSON(fiber.Map{"admins": accounts})
}

func DeleteAdmin(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleMaster)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	username := c.Params("username")
	if err := Store.DeleteAdmin(c.Context(), username); err != nil {
		switch {
		case errors.Is(err, storage.ErrCannotDeleteMaster):
			return utils.JsonErrorResponse(c, fiber.StatusForbidden, "The master account cannot be deleted")
		case errors.Is(err, storage.ErrNotFound):
			return utils.JsonErrorResponse(c, fiber.StatusNotFound, "No admin account found for the provided username")
		}
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Delete admin failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     fmt.Sprintf("DeleteAdmin: Unable to delete account, Username:%s, err:%v", username, err),
			ServiceName: config.ServiceName,
		})
	}
	return c.JSON(fiber.Map{"status": fiber.StatusOK, "message": "Admin account deleted successfully"})
}

func GenerateCodes(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleAdmin)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	type FormData struct {
		Usernames []string `json:"usernames" validate:"max=500,dive,max=100"`
		Count     int      `json:"count" validate:"gte=0,lte=500"`
		Prefix    string   `json:"prefix" validate:"max=20"`
	}
	formData := new(FormData)
	if err := c.BodyParser(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	if err := Validate.Struct(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Provided data are not valid")
	}
	if len(formData.Usernames) == 0 && formData.Count == 0 {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Provide usernames or a count of codes to generate")
	}
	created, err := Wheel.GenerateCodes(c.Context(), &wheel.GenerateCodesInput{
		Usernames: formData.Usernames,
		Count:     formData.Count,
		Prefix:    formData.Prefix,
	})
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Unable to save data, system error. please try again later", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "GenerateCodes: Unable to generate codes, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	return c.JSON(fiber.Map{"codes": created, "created": len(created), "message": fmt.Sprintf("Generated %d code(s)", len(created))})
}

func GetCodes(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleAdmin)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	filter := storage.CodeFilter(c.Query("status"))
	if filter != storage.CodeFilterAll && filter != storage.CodeFilterUsed && filter != storage.CodeFilterUnused {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "status must be used or unused")
	}
	codes, err := Store.ListCodes(c.Context(), filter)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Get codes failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "GetCodes: Unable to get code data, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	return c.JSON(fiber.Map{"codes": codes})
}

func ExportCodes(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleAdmin)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	codes, err := Store.ListCodes(c.Context(), storage.CodeFilterAll)
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Export codes failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "ExportCodes: Unable to get code data, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	headers := []string{"Username", "Redeem code", "Consumed", "Issued at", "Consumed at"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(sheet, cell, header)
	}
	for row, code := range codes {
		consumedAt := ""
		if code.ConsumedAt != nil {
			consumedAt = code.ConsumedAt.Format(time.RFC3339)
		}
		values := []interface{}{code.Username, code.Code, code.Consumed, code.IssuedAt.Format(time.RFC3339), consumedAt}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			file.SetCellValue(sheet, cell, value)
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Export codes failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "ExportCodes: Unable to write workbook, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="redeem_codes.xlsx"`)
	return c.Send(buf.Bytes())
}

func AdminGetPrizes(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleAdmin)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	prizes, err := Store.GetPrizes(c.Context())
	if err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Get prizes failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "AdminGetPrizes: Unable to get prize data, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	return c.JSON(fiber.Map{"prizes": prizes})
}

func UpdatePrizes(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleAdmin)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	type FormData struct {
		Prizes []model.Prize `json:"prizes" validate:"required,dive"`
	}
	formData := new(FormData)
	if err := c.BodyParser(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Please provide all required data")
	}
	if err := Validate.Struct(formData); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusBadRequest, "Provided data are not valid")
	}
	prizes := formData.Prizes
	for i := range prizes {
		if prizes[i].Id == "" {
			prizes[i].Id = uuid.NewString()
		}
	}
	if err := Store.ReplacePrizes(c.Context(), prizes); err != nil {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Unable to save data, system error. please try again later", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "UpdatePrizes: Unable to replace prize pool, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	invalidateCache(c, "prizes")
	return c.JSON(fiber.Map{"status": fiber.StatusOK, "message": "Prize pool updated", "prizes": prizes})
}

func GetStats(c *fiber.Ctx) error {
	_, err := Tokens.FromRequest(c, model.RoleAdmin)
	if err != nil {
		return utils.JsonErrorResponse(c, auth.StatusFor(err), err.Error())
	}
	statsError := func(err error) error {
		return utils.JsonErrorResponse(c, fiber.StatusInternalServerError, "Get stats failed", utils.Logger{
			LogLevel:    utils.CRITICAL,
			Message:     "GetStats: Unable to aggregate stats, error: " + err.Error(),
			ServiceName: config.ServiceName,
		})
	}
	totalCodes, usedCodes, err := Store.CountCodes(c.Context())
	if err != nil {
		return statsError(err)
	}
	totalDraws, err := Store.CountDraws(c.Context())
	if err != nil {
		return statsError(err)
	}
	distribution, err := Store.DrawTotals(c.Context())
	if err != nil {
		return statsError(err)
	}
	history, err := Store.ListDraws(c.Context(), statsHistorySize)
	if err != nil {
		return statsError(err)
	}
	return c.JSON(fiber.Map{
		"total_codes":        totalCodes,
		"used_codes":         usedCodes,
		"unused_codes":       totalCodes - usedCodes,
		"total_draws":        totalDraws,
		"prize_distribution": distribution,
		"history":            history,
	})
}
