package authentication

import (
	"errors"
	"net/http"

	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

// ErrForbidden: аутентифицированный пользователь без прав админа.
// Контроллеры отдают на него 403, а не 401 и не 404.
var ErrForbidden = errors.New("admin access required")

// RequireAdmin: проверка прав перед каждым админским действием
func RequireAdmin(r *http.Request) (*Claims, error) {
	claims, err := ValidateToken(r)
	if err != nil {
		return nil, err
	}
	if claims.Role != users.RoleAdmin {
		return nil, ErrForbidden
	}
	return claims, nil
}
