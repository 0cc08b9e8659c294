package compose

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// RenderHTML convierte el markdown del borrador a HTML para la vista previa
// y para el cuerpo del correo de prueba.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
