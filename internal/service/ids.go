package service

import "github.com/google/uuid"

// validID 主键均为 UUID；非法格式直接视为不存在，避免数据库类型转换报错
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
