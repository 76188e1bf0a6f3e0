package sections

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	text := strings.Join([]string{
		"INTRODUCCIÓN",
		"Este trabajo analiza el problema desde una perspectiva cuantitativa.",
		"",
		"Marco Teórico",
		"La literatura reciente muestra resultados mixtos.",
		"Esta línea termina con punto y es demasiado común para ser encabezado.",
		"CONCLUSIONES",
		"Se concluye que el efecto es moderado.",
	}, "\n")

	index := Detect(SplitLines(text))

	if pos, ok := index["INTRODUCCIÓN"]; !ok || pos != 0 {
		t.Errorf("expected INTRODUCCIÓN at line 0, got %d (found=%v)", pos, ok)
	}
	if pos, ok := index["MARCO TEÓRICO"]; !ok || pos != 3 {
		t.Errorf("expected MARCO TEÓRICO at line 3, got %d (found=%v)", pos, ok)
	}
	if pos, ok := index["CONCLUSIONES"]; !ok || pos != 6 {
		t.Errorf("expected CONCLUSIONES at line 6, got %d (found=%v)", pos, ok)
	}
}

func TestDetectFirstOccurrenceWins(t *testing.T) {
	lines := []string{"RESULTADOS", "texto", "RESULTADOS", "más texto"}
	index := Detect(lines)

	if pos := index["RESULTADOS"]; pos != 0 {
		t.Errorf("expected first occurrence at line 0, got %d", pos)
	}
}

func TestDetectSkipsLongProseLines(t *testing.T) {
	long := strings.Repeat("palabra ", 12) + "sin punto final pero muy larga para ser encabezado"
	index := Detect([]string{long})

	if len(index) != 0 {
		t.Errorf("expected no headers, got %v", index)
	}
}

func TestDetectUpperCaseLongLineIsHeader(t *testing.T) {
	header := "ANÁLISIS Y DISCUSIÓN DE LOS RESULTADOS OBTENIDOS EN LA FASE EXPERIMENTAL DEL ESTUDIO"
	index := Detect([]string{header})

	if _, ok := index[header]; !ok {
		t.Errorf("expected fully upper-case long line to be a header")
	}
}

func TestBlock(t *testing.T) {
	lines := []string{
		"INTRODUCCIÓN",
		"contenido de la introducción",
		"MÉTODO",
		"contenido del método",
		"línea final del método",
	}
	index := Detect(lines)

	intro := index.Block(lines, index["INTRODUCCIÓN"])
	if !strings.Contains(intro, "contenido de la introducción") {
		t.Errorf("intro block missing its content: %q", intro)
	}
	if strings.Contains(intro, "contenido del método") {
		t.Errorf("intro block leaked into the next section: %q", intro)
	}

	method := index.Block(lines, index["MÉTODO"])
	if !strings.Contains(method, "línea final del método") {
		t.Errorf("last section block should extend to end of document: %q", method)
	}
}

func TestSplitLinesNormalizesCRLF(t *testing.T) {
	lines := SplitLines("uno\r\ndos\r\ntres")
	if len(lines) != 3 || lines[1] != "dos" {
		t.Errorf("unexpected split: %v", lines)
	}
}
