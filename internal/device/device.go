// device вычисляет отпечаток устройства по метаданным соединения.
package device

import (
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprint возвращает стабильный односторонний отпечаток строки User-Agent.
// Используется только для сравнения на равенство; обратного преобразования нет.
func Fingerprint(userAgent string) string {
	sum := sha256.Sum256([]byte(userAgent))

	return base64.RawURLEncoding.EncodeToString(sum[:])
}
