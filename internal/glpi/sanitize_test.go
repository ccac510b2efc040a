package glpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Impressora parada", "Impressora parada"},
		{"simple tags", "<p>Sem acesso à <b>VPN</b></p>", "Sem acesso à VPN"},
		{"style block with content", "<style>.x{color:red}</style>Texto", "Texto"},
		{"script block with content", "<script>alert('xss')</script>Texto", "Texto"},
		{"multiline script", "antes<script>\nvar a = 1;\nalert(a);\n</script>depois", "antesdepois"},
		{"entities", "a &nbsp;&quot;b&quot; &amp; c", `a "b" & c`},
		{"numeric entity", "caf&#233;", "café"},
		{"whitespace collapse", "  um \n\t dois   tres  ", "um dois tres"},
		{"unterminated tag", "texto <a href='x", "texto"},
		{"attribute soup", `<span class="font-weight-bold" data-x="1">Chamado</span>`, "Chamado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Clean(got), "Clean must be idempotent")
		})
	}
}

func TestCleanStripsScriptAndStyleText(t *testing.T) {
	out := Clean("<style type='text/css'>body{display:none}</style><script>secret()</script><p>ok</p>")
	assert.Equal(t, "ok", out)
	assert.NotContains(t, out, "display")
	assert.NotContains(t, out, "secret")
}

func TestExtractContactInfo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ContactInfo
	}{
		{
			name:  "empty input",
			input: "",
			want:  ContactInfo{},
		},
		{
			name:  "anchor text as name",
			input: `<a href='mailto:a@b.com'>Jane</a>`,
			want:  ContactInfo{Nome: "Jane", Email: "a@b.com"},
		},
		{
			name:  "leading name before tag",
			input: `Jane <a href="mailto:a@b.com">a@b.com</a>`,
			want:  ContactInfo{Nome: "Jane", Email: "a@b.com"},
		},
		{
			name:  "full glpi rendering",
			input: `Maria Souza<br><a href="mailto:maria@acme.com.br">maria@acme.com.br</a> <a href="tel:+5511987654321">+5511987654321</a>`,
			want:  ContactInfo{Nome: "Maria Souza", Email: "maria@acme.com.br", Telefone: "+5511987654321"},
		},
		{
			name:  "phone link",
			input: `<a href="tel:1234">ramal</a>`,
			want:  ContactInfo{Nome: "ramal", Telefone: "1234"},
		},
		{
			name:  "name only plain text",
			input: "João da Silva",
			want:  ContactInfo{Nome: "João da Silva"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractContactInfo(tt.input))
		})
	}
}
