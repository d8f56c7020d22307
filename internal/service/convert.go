package service

import (
	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/model"
	"github.com/mzaraf/vms/internal/repository"
)

const dateLayout = "2006-01-02"

func toUserResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:           u.UserID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
	if u.Department != nil {
		name := u.Department.Name
		resp.DepartmentName = &name
	}
	return resp
}

func toDepartmentResponse(d *model.Department, visitorCount int64) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:           d.DepartmentID,
		Name:         d.Name,
		Description:  d.Description,
		VisitorCount: visitorCount,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDepartmentResponses(rows []repository.DepartmentWithCount) []dto.DepartmentResponse {
	result := make([]dto.DepartmentResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toDepartmentResponse(&rows[i].Department, rows[i].VisitorCount))
	}
	return result
}

func toVisitorResponse(v *model.Visitor) dto.VisitorResponse {
	resp := dto.VisitorResponse{
		ID:            v.VisitorID,
		Name:          v.Name,
		Email:         v.Email,
		Phone:         v.Phone,
		Purpose:       v.Purpose,
		DepartmentID:  v.DepartmentID,
		Host:          v.Host,
		Organization:  v.Organization,
		Address:       v.Address,
		Status:        string(v.Status),
		StatusDisplay: v.Status.Display(),
		VisitDate:     v.VisitDate.Format(dateLayout),
		CheckInTime:   v.CheckInTime,
		CheckOutTime:  v.CheckOutTime,
		Avatar:        v.Avatar,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
	if v.Department != nil {
		name := v.Department.Name
		resp.DepartmentName = &name
	}
	return resp
}

func toVisitorResponses(visitors []model.Visitor) []dto.VisitorResponse {
	result := make([]dto.VisitorResponse, 0, len(visitors))
	for i := range visitors {
		result = append(result, toVisitorResponse(&visitors[i]))
	}
	return result
}
