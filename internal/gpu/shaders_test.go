package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

func TestEmbeddedShadersNotEmpty(t *testing.T) {
	if shaderLifeStep == "" {
		t.Fatal("life_step shader source is empty")
	}
	if shaderCellRender == "" {
		t.Fatal("cell_render shader source is empty")
	}
}

func TestShadersCompile(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
	}{
		{"life_step", shaderLifeStep},
		{"cell_render", shaderCellRender},
	} {
		t.Run(tt.name, func(t *testing.T) {
			spirv, err := naga.Compile(tt.src)
			if err != nil {
				t.Fatalf("naga.Compile: %v", err)
			}
			if len(spirv) == 0 {
				t.Fatal("empty SPIR-V output")
			}
		})
	}
}

func TestWorkgroupSizeMatchesShader(t *testing.T) {
	// The Go dispatch math and the WGSL attribute must agree.
	if !strings.Contains(shaderLifeStep, "@workgroup_size(8, 8)") {
		t.Fatalf("life_step workgroup size does not match lifeWorkgroupSize=%d", lifeWorkgroupSize)
	}
}

func TestShaderConfigStructsMatch(t *testing.T) {
	// Both shaders declare the SimConfig uniform; their field layout
	// must be identical so one Go serialization serves both.
	idx := strings.Index(shaderLifeStep, "struct SimConfig")
	if idx < 0 {
		t.Fatal("life_step missing SimConfig struct")
	}
	stepDecl := shaderLifeStep[idx : idx+strings.Index(shaderLifeStep[idx:], "}")]
	idx = strings.Index(shaderCellRender, "struct SimConfig")
	if idx < 0 {
		t.Fatal("cell_render missing SimConfig struct")
	}
	renderDecl := shaderCellRender[idx : idx+strings.Index(shaderCellRender[idx:], "}")]
	if stepDecl != renderDecl {
		t.Errorf("SimConfig declarations differ:\n%s\nvs\n%s", stepDecl, renderDecl)
	}
}
