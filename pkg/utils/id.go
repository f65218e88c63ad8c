package utils

import "github.com/google/uuid"

// NewID 统一的字符串主键
func NewID() string { return uuid.NewString() }
