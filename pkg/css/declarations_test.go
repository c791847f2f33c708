package css

import "testing"

func TestParseDeclarations_SingleProperty(t *testing.T) {
	d := ParseDeclarations("color: red")
	value, ok := d.Get("color")
	if !ok || value != "red" {
		t.Errorf("expected color='red', got (%q, %v)", value, ok)
	}
}

func TestParseDeclarations_MultipleProperties(t *testing.T) {
	d := ParseDeclarations("color: red; width: 100px;")
	color, _ := d.Get("color")
	width, _ := d.Get("width")
	if color != "red" || width != "100px" {
		t.Errorf("expected both properties to parse, got color=%q width=%q", color, width)
	}
}

func TestParseDeclarations_LaterWins(t *testing.T) {
	d := ParseDeclarations("color: red; color: blue")
	if color, _ := d.Get("color"); color != "blue" {
		t.Errorf("expected later declaration to win, got %q", color)
	}
}

func TestParseDeclarations_Important(t *testing.T) {
	d := ParseDeclarations("color: red !important")
	if color, _ := d.Get("color"); color != "red" {
		t.Errorf("expected !important to be dropped, got %q", color)
	}
}

func TestParseDeclarations_FunctionValue(t *testing.T) {
	d := ParseDeclarations("background-color: rgba(10, 20, 30, 0.5)")
	if v, _ := d.Get("background-color"); v != "rgba(10, 20, 30, 0.5)" {
		t.Errorf("function value rebuilt as %q", v)
	}
}

func TestParseDeclarations_CommaSpacing(t *testing.T) {
	tests := map[string]string{
		"rgba(10,20,30,0.5)":          "rgba(10, 20, 30, 0.5)",
		"rgba(10 ,20 , 30,0.5)":       "rgba(10, 20, 30, 0.5)",
		"linear-gradient(red,blue)":   "linear-gradient(red, blue)",
		"linear-gradient(red , blue)": "linear-gradient(red, blue)",
	}
	for in, want := range tests {
		d := ParseDeclarations("background-color: " + in)
		if v, _ := d.Get("background-color"); v != want {
			t.Errorf("ParseDeclarations(%q) value = %q, want %q", in, v, want)
		}
	}
}

func TestParseDeclarations_PaddingShorthand(t *testing.T) {
	tests := []struct {
		input string
		want  [4]string
	}{
		{"padding: 15px", [4]string{"15px", "15px", "15px", "15px"}},
		{"padding: 10px 20px", [4]string{"10px", "20px", "10px", "20px"}},
		{"padding: 10px 20px 30px", [4]string{"10px", "20px", "30px", "20px"}},
		{"padding: 10px 20px 30px 40px", [4]string{"10px", "20px", "30px", "40px"}},
	}
	for _, tt := range tests {
		d := ParseDeclarations(tt.input)
		for i, side := range Sides {
			if got, _ := d.Get("padding-" + side); got != tt.want[i] {
				t.Errorf("%q: padding-%s = %q, want %q", tt.input, side, got, tt.want[i])
			}
		}
	}
}

func TestParseDeclarations_BorderShorthand(t *testing.T) {
	d := ParseDeclarations("border: 2px solid #000")
	width, _ := d.Get("border-width")
	style, _ := d.Get("border-style")
	color, _ := d.Get("border-color")
	if width != "2px" || style != "solid" || color != "#000" {
		t.Errorf("border shorthand: width=%q style=%q color=%q", width, style, color)
	}
}

func TestParseDeclarations_BorderShorthandResetsSides(t *testing.T) {
	d := ParseDeclarations("border-top-width: 9px; border: 1px dashed red")
	if _, ok := d.Get("border-top-width"); ok {
		t.Error("expected border shorthand to reset border-top-width")
	}
}

func TestParseDeclarations_BorderSide(t *testing.T) {
	d := ParseDeclarations("border-left: dotted 4px blue")
	width, _ := d.Get("border-left-width")
	style, _ := d.Get("border-left-style")
	color, _ := d.Get("border-left-color")
	if width != "4px" || style != "dotted" || color != "blue" {
		t.Errorf("border-left: width=%q style=%q color=%q", width, style, color)
	}
}

func TestParseDeclarations_BorderRadius(t *testing.T) {
	d := ParseDeclarations("border-top-left-radius: 3px; border-radius: 8px 4px / 2px")
	if v, _ := d.Get("border-radius"); v != "8px 4px" {
		t.Errorf("border-radius = %q, want %q", v, "8px 4px")
	}
	if _, ok := d.Get("border-top-left-radius"); ok {
		t.Error("expected border-radius shorthand to reset corner longhands")
	}
}

func TestExpandBackgroundShorthand_URL(t *testing.T) {
	d := ParseDeclarations("background: url(test.png)")
	imgs := d.Values("background-image")
	if len(imgs) != 1 || imgs[0] != "url(test.png)" {
		t.Errorf("background shorthand url: got %q", imgs)
	}
}

func TestExpandBackgroundShorthand_URLAndColor(t *testing.T) {
	d := ParseDeclarations("background: red url(bg.png) no-repeat")

	if imgs := d.Values("background-image"); len(imgs) != 1 || imgs[0] != "url(bg.png)" {
		t.Errorf("background-image: got %q", imgs)
	}
	if color, ok := d.Get("background-color"); !ok || color != "red" {
		t.Errorf("background-color: got (%q, %v)", color, ok)
	}
	if repeat := d.Values("background-repeat"); len(repeat) != 1 || repeat[0] != "no-repeat" {
		t.Errorf("background-repeat: got %q", repeat)
	}
}

func TestExpandBackgroundShorthand_DataURI(t *testing.T) {
	d := ParseDeclarations("background: url('data:image/png;base64,abc/123') center / cover")

	if imgs := d.Values("background-image"); len(imgs) != 1 || imgs[0] != "url('data:image/png;base64,abc/123')" {
		t.Errorf("background-image: got %q", imgs)
	}
	if pos := d.Values("background-position"); len(pos) != 1 || pos[0] != "center" {
		t.Errorf("background-position: got %q", pos)
	}
	if size := d.Values("background-size"); len(size) != 1 || size[0] != "cover" {
		t.Errorf("background-size: got %q", size)
	}
}

func TestExpandBackgroundShorthand_Layers(t *testing.T) {
	d := ParseDeclarations("background: linear-gradient(red, blue) repeat-x, url(a.png) right 10px top / 20px 30px space, #00ff00")

	imgs := d.Values("background-image")
	if len(imgs) != 3 || imgs[0] != "linear-gradient(red, blue)" || imgs[1] != "url(a.png)" || imgs[2] != "none" {
		t.Fatalf("background-image layers: got %q", imgs)
	}
	if pos := d.Values("background-position"); pos[1] != "right 10px top" {
		t.Errorf("second layer position: got %q", pos[1])
	}
	if size := d.Values("background-size"); size[1] != "20px 30px" {
		t.Errorf("second layer size: got %q", size[1])
	}
	if repeat := d.Values("background-repeat"); repeat[0] != "repeat-x" || repeat[1] != "space" || repeat[2] != "repeat" {
		t.Errorf("repeat layers: got %q", repeat)
	}
	if color, _ := d.Get("background-color"); color != "#00ff00" {
		t.Errorf("background-color from final layer: got %q", color)
	}
}

func TestExpandBackgroundShorthand_ColorOnly(t *testing.T) {
	d := ParseDeclarations("background: blue")

	if color, ok := d.Get("background-color"); !ok || color != "blue" {
		t.Errorf("background-color: got (%q, %v)", color, ok)
	}
	if imgs := d.Values("background-image"); len(imgs) != 1 || imgs[0] != "none" {
		t.Errorf("expected a single empty layer, got %q", imgs)
	}
}

func TestExpandBackgroundShorthand_Boxes(t *testing.T) {
	d := ParseDeclarations("background: red padding-box content-box")
	if v := d.Values("background-origin"); v[0] != "padding-box" {
		t.Errorf("background-origin: got %q", v)
	}
	if v := d.Values("background-clip"); v[0] != "content-box" {
		t.Errorf("background-clip: got %q", v)
	}
}

func TestLayeredLonghand(t *testing.T) {
	d := ParseDeclarations("background-image: url(a.png), linear-gradient(to right, rgb(0, 0, 0), #fff)")
	imgs := d.Values("background-image")
	if len(imgs) != 2 || imgs[1] != "linear-gradient(to right, rgb(0, 0, 0), #fff)" {
		t.Errorf("layered background-image: got %q", imgs)
	}
}

func TestExpandBorderImage(t *testing.T) {
	tests := []struct {
		input                                string
		source, slice, width, outset, repeat string
	}{
		{"border-image: url(frame.png) 30 round", "url(frame.png)", "30", "1", "0", "round"},
		{"border-image: url(frame.png) 10% fill / 8px / 2px repeat space", "url(frame.png)", "10% fill", "8px", "2px", "repeat space"},
		{"border-image: url(frame.png)", "url(frame.png)", "100%", "1", "0", "stretch"},
	}
	for _, tt := range tests {
		d := ParseDeclarations(tt.input)
		got := [5]string{}
		for i, p := range []string{"source", "slice", "width", "outset", "repeat"} {
			got[i], _ = d.Get("border-image-" + p)
		}
		want := [5]string{tt.source, tt.slice, tt.width, tt.outset, tt.repeat}
		if got != want {
			t.Errorf("%q: got %q, want %q", tt.input, got, want)
		}
	}
}

func TestFromMap(t *testing.T) {
	d := FromMap(map[string]string{
		"backgroundColor": "red",
		"border":          "1px solid black",
		"borderTopWidth":  "4px",
	})
	if v, _ := d.Get("background-color"); v != "red" {
		t.Errorf("camelCase key not normalized: %v", d)
	}
	if v, _ := d.Get("border-top-width"); v != "4px" {
		t.Errorf("longhand in a map must survive the shorthand, got %q", v)
	}
}

func TestNormalizeProperty(t *testing.T) {
	tests := map[string]string{
		"backgroundColor":        "background-color",
		"borderTopLeftRadius":    "border-top-left-radius",
		"background-color":       "background-color",
		"--custom":               "--custom",
		"  imageRendering ":      "image-rendering",
		"borderBlockStartColor":  "border-block-start-color",
	}
	for in, want := range tests {
		if got := NormalizeProperty(in); got != want {
			t.Errorf("NormalizeProperty(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeclarationsString(t *testing.T) {
	d := ParseDeclarations("width: 10px; color: red")
	if got := d.String(); got != "color: red; width: 10px;" {
		t.Errorf("String() = %q", got)
	}
}

func TestDeclare_ShorthandReplacesLonghands(t *testing.T) {
	d := ParseDeclarations("border: 2px solid #000; border-top-width: 4px; border-block-end-style: dotted; " +
		"border-top-left-radius: 6px; border-start-end-radius: 2px")
	d.Declare("border", "none")
	d.Declare("borderRadius", "0")

	for _, gone := range []string{"border-top-width", "border-block-end-style", "border-top-left-radius", "border-start-end-radius"} {
		if v, ok := d.Get(gone); ok {
			t.Errorf("%s survived as %q", gone, v)
		}
	}
	if v, _ := d.Get("border-style"); v != "none" {
		t.Errorf("border-style = %q, want none", v)
	}
	if v, _ := d.Get("border-radius"); v != "0" {
		t.Errorf("border-radius = %q, want 0", v)
	}

	d.Declare("paddingTop", " 5px ")
	if v, _ := d.Get("padding-top"); v != "5px" {
		t.Errorf("padding-top = %q, want 5px", v)
	}
}
