package service

import (
	"context"

	"hrcore/internal/gateway"

	"go.uber.org/zap"
)

// DisplayInfo is what list/detail responses render for an employee.
type DisplayInfo struct {
	DisplayName    string
	DepartmentName string
}

// NameResolver batches the applicant/approver ids of one result page into a
// single directory call. It never fails a read: on directory degradation it
// returns what it has and missing entries render as "unknown".
type NameResolver struct {
	directory gateway.DirectoryGateway
	log       *zap.Logger
}

func NewNameResolver(directory gateway.DirectoryGateway, log *zap.Logger) *NameResolver {
	return &NameResolver{directory: directory, log: log}
}

// ResolveNames resolves the distinct employee numbers to display info.
func (r *NameResolver) ResolveNames(ctx context.Context, employeeNos []int64) map[int64]DisplayInfo {
	distinct := make([]int64, 0, len(employeeNos))
	seen := make(map[int64]bool, len(employeeNos))
	for _, no := range employeeNos {
		if no == 0 || seen[no] {
			continue
		}
		seen[no] = true
		distinct = append(distinct, no)
	}

	result := make(map[int64]DisplayInfo, len(distinct))
	if len(distinct) == 0 {
		return result
	}

	users, err := r.directory.GetUsers(ctx, distinct)
	if err != nil {
		r.log.Warn("directory lookup failed, rendering names as unknown",
			zap.Int("requested", len(distinct)),
			zap.Error(err))
		return result
	}

	for _, u := range users {
		result[u.EmployeeNo] = DisplayInfo{
			DisplayName:    u.DisplayName,
			DepartmentName: u.DepartmentName,
		}
	}
	return result
}
