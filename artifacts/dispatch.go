package artifacts

import (
	"strings"
	"text/template"
)

// RenderDispatchTable generates the C source of §4.4.5/§9: one wrapper per
// DPI function that takes the function's arguments as typed C parameters
// and forwards them either to the callback symbol loom_cb_<name> or, for
// the builtin print functions, to an inlined printf. The wrappers do not
// unpack an argument-register array and return the callback's own C
// return type, not a 64-bit result. Also emitted is the trailing
// LOOM_DISPATCH_TABLE[] array the host loads with a single symbol lookup
// — never dlsym'd per function, matching the "dispatch table as data, not
// code" design note (§9).
func RenderDispatchTable(meta DPIMetadata) (string, error) {
	var sb strings.Builder
	if err := dispatchTmpl.Execute(&sb, meta); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var cTypeOf = map[string]string{
	"int":       "int32_t",
	"shortreal": "float",
	"real":      "double",
	"string":    "const char *",
}

func cType(width int) string {
	switch {
	case width <= 8:
		return "int8_t"
	case width <= 16:
		return "int16_t"
	case width <= 32:
		return "int32_t"
	default:
		return "int64_t"
	}
}

var dispatchFuncs = template.FuncMap{
	"ctype": func(a DPIArg) string {
		if t, ok := cTypeOf[a.Type]; ok {
			return t
		}
		return cType(a.Width)
	},
	"rettype": func(r *DPIReturn) string {
		if r == nil {
			return "void"
		}
		if t, ok := cTypeOf[r.Type]; ok {
			return t
		}
		return cType(r.Width)
	},
}

var dispatchTmpl = template.Must(template.New("dispatch").Funcs(dispatchFuncs).Parse(`/* generated by loomc — do not edit */
#include <stdint.h>
#include <stdio.h>

#define LOOM_MAILBOX_BASE {{.MailboxBase}}
#define LOOM_DPI_BASE {{.DPIBase}}
#define LOOM_FUNC_BLOCK_SIZE {{.FuncBlockSize}}

struct loom_dpi_entry {
    int id;
    const char *name;
    unsigned base_addr;
    void *wrapper;
};

{{range .Functions}}
extern {{rettype .Return}} loom_cb_{{.Name}}({{range $i, $a := .Args}}{{if $i}}, {{end}}{{ctype $a}} {{$a.Name}}{{end}});

static {{rettype .Return}} loom_wrap_{{.Name}}({{range $i, $a := .Args}}{{if $i}}, {{end}}{{ctype $a}} {{$a.Name}}{{end}}) {
{{if .Builtin}}    printf({{range $i, $a := .Args}}{{if $i}}, {{end}}{{$a.Name}}{{end}});
{{else if .Return}}    return loom_cb_{{.Name}}({{range $i, $a := .Args}}{{if $i}}, {{end}}{{$a.Name}}{{end}});
{{else}}    loom_cb_{{.Name}}({{range $i, $a := .Args}}{{if $i}}, {{end}}{{$a.Name}}{{end}});
{{end}}}
{{end}}

const struct loom_dpi_entry LOOM_DISPATCH_TABLE[] = {
{{range .Functions}}    { {{.ID}}, "{{.Name}}", {{.BaseAddr}}, (void *)loom_wrap_{{.Name}} },
{{end}}};

const unsigned LOOM_DISPATCH_TABLE_LEN = {{len .Functions}};
`))
