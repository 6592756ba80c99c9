package checkoutselector

import (
	"fmt"
	"strings"
)

// ParseCustomerGID извлекает локальный ID покупателя из глобального
// идентификатора платформы вида "gid://<platform>/Customer/12345".
//
// Формат фиксирован: схема "gid://", затем минимум три сегмента пути,
// последний из которых - непустой локальный ID. Любое отклонение -
// ошибка, а не молчаливый пустой результат.
func ParseCustomerGID(gid string) (string, error) {
	const scheme = "gid://"

	if gid == "" {
		return "", fmt.Errorf("customer gid is empty")
	}
	if !strings.HasPrefix(gid, scheme) {
		return "", fmt.Errorf("customer gid %q does not start with %q", gid, scheme)
	}

	path := strings.TrimPrefix(gid, scheme)
	segments := strings.Split(path, "/")
	if len(segments) < 3 {
		return "", fmt.Errorf("customer gid %q has too few path segments", gid)
	}

	localID := segments[len(segments)-1]
	if localID == "" {
		return "", fmt.Errorf("customer gid %q has an empty local id", gid)
	}

	return localID, nil
}
