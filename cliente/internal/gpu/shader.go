package gpu

import (
	"fmt"
	"strings"
)

// ShaderDefine é uma macro de pré-processador passada ao compilador.
type ShaderDefine struct {
	Name  string
	Value string
}

// ShaderCompiler recebe código fonte + defines e devolve bytecode.
type ShaderCompiler interface {
	Compile(source string, defines []ShaderDefine, entry, target string) (ShaderBytecode, error)
}

// GLSLPreprocessor é o compilador usado pelos dois backends.
// O "bytecode" é o GLSL final com os defines injetados logo depois de #version;
// a compilação de verdade acontece no driver quando o PSO é criado.
type GLSLPreprocessor struct{}

// Compile valida o estágio e injeta os defines.
func (GLSLPreprocessor) Compile(source string, defines []ShaderDefine, entry, target string) (ShaderBytecode, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: fonte vazia (%s)", ErrShaderCompile, target)
	}
	switch target {
	case "vs", "fs":
	default:
		return nil, fmt.Errorf("%w: target desconhecido %q", ErrShaderCompile, target)
	}
	if !strings.Contains(source, "void "+entry+"(") {
		return nil, fmt.Errorf("%w: entry point %q não encontrado (%s)", ErrShaderCompile, entry, target)
	}

	var header strings.Builder
	for _, d := range defines {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: define sem nome", ErrShaderCompile)
		}
		value := d.Value
		if value == "" {
			value = "1"
		}
		fmt.Fprintf(&header, "#define %s %s\n", d.Name, value)
	}

	body := source
	version := ""
	if strings.HasPrefix(strings.TrimSpace(source), "#version") {
		trimmed := strings.TrimLeft(source, " \t\r\n")
		nl := strings.IndexByte(trimmed, '\n')
		if nl < 0 {
			return nil, fmt.Errorf("%w: shader só contém #version", ErrShaderCompile)
		}
		version = trimmed[:nl+1]
		body = trimmed[nl+1:]
	}

	return ShaderBytecode(version + header.String() + body), nil
}
