package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost 测试里可调低
var PasswordCost = bcrypt.DefaultCost

// bcrypt 只取前 72 字节，超出部分直接拒绝
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

func HashPassword(pw string) (string, error) {
	if len(pw) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	return string(b), err
}

// CheckPassword hashed 为空或格式不对时返回 false
func CheckPassword(pw, hashed string) bool {
	if hashed == "" || len(pw) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
