package configreader

import (
	"encoding"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"fknsrs.biz/p/viddown/internal/stringutil"
)

// Read fills out from a config file, then command-line flags, then
// environment variables. Later sources override earlier ones.
func Read(program string, arguments, environment []string, out interface{}) error {
	return ReadWithPrefix(program, "", arguments, environment, out)
}

// ReadWithPrefix is like Read, but environment variables may also be given
// with envPrefix in front of their name (e.g. VIDDOWN_LOG_LEVEL). Prefixed
// variables win over unprefixed ones.
func ReadWithPrefix(program, envPrefix string, arguments, environment []string, out interface{}) error {
	fields, err := getFields(out)
	if err != nil {
		return fmt.Errorf("configreader.Read: %w", err)
	}

	environment = unprefixEnvironment(envPrefix, environment)

	if configPath := findConfigPath(fields, arguments, environment); configPath != "" {
		if err := readFile(configPath, out); err != nil {
			return fmt.Errorf("configreader.Read: %w", err)
		}
	}

	if err := readArguments(program, fields, arguments); err != nil {
		return fmt.Errorf("configreader.Read: could not read command-line flags: %w", err)
	}

	if err := readEnvironment(fields, environment); err != nil {
		return fmt.Errorf("configreader.Read: could not read environment variables: %w", err)
	}

	return nil
}

type kind int

const (
	kindString kind = iota
	kindBool
	kindInt
	kindText
)

type field struct {
	goName string
	name   string
	help   string
	kind   kind
	value  reflect.Value
}

func (f field) String() string {
	switch f.kind {
	case kindString:
		return f.value.String()
	case kindBool:
		return strconv.FormatBool(f.value.Bool())
	case kindInt:
		return strconv.FormatInt(f.value.Int(), 10)
	default:
		d, err := f.value.Addr().Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return ""
		}
		return string(d)
	}
}

func (f field) Set(s string) error {
	switch f.kind {
	case kindString:
		f.value.SetString(s)
	case kindBool:
		f.value.SetBool(stringutil.LooksTrue(s))
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("could not parse %s (%s) as integer: %w", f.goName, f.name, err)
		}
		f.value.SetInt(int64(n))
	default:
		if err := f.value.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("could not unmarshal %s (%s): %w", f.goName, f.name, err)
		}
	}

	return nil
}

var (
	stringType = reflect.TypeOf("")
	boolType   = reflect.TypeOf(false)
	intType    = reflect.TypeOf(0)
	textType   = reflect.TypeOf((*interface {
		encoding.TextMarshaler
		encoding.TextUnmarshaler
	})(nil)).Elem()
)

func getFields(v interface{}) ([]field, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, fmt.Errorf("configreader.getFields: value must be a non-nil pointer; was instead %T", v)
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("configreader.getFields: value must be a pointer to a struct; was instead %T", v)
	}

	typ := rv.Type()

	var fields []field
	for i := 0; i < typ.NumField(); i++ {
		tf := typ.Field(i)

		name := tf.Tag.Get("name")
		if name == "" {
			name = stringutil.PascalToSnake(tf.Name)
		}
		if name == "-" {
			continue
		}

		f := field{goName: tf.Name, name: name, help: tf.Tag.Get("help"), value: rv.Field(i)}

		switch {
		case reflect.PointerTo(tf.Type).Implements(textType):
			f.kind = kindText
		case tf.Type == stringType:
			f.kind = kindString
		case tf.Type == boolType:
			f.kind = kindBool
		case tf.Type == intType:
			f.kind = kindInt
		default:
			return nil, fmt.Errorf("configreader.getFields: unsupported type %s for %s (%s)", tf.Type, tf.Name, name)
		}

		fields = append(fields, f)
	}

	return fields, nil
}

func unprefixEnvironment(envPrefix string, environment []string) []string {
	if envPrefix == "" {
		return environment
	}

	prefix := strings.ToLower(envPrefix)

	var plain, prefixed []string
	for _, e := range environment {
		if strings.HasPrefix(strings.ToLower(e), prefix) {
			prefixed = append(prefixed, e[len(prefix):])
		} else {
			plain = append(plain, e)
		}
	}

	return append(prefixed, plain...)
}

// findConfigPath looks for the "config" parameter ahead of the real parse,
// since the file it names has to be read first.
func findConfigPath(fields []field, arguments, environment []string) string {
	for i, arg := range arguments {
		switch {
		case arg == "-config" && i+1 < len(arguments):
			return arguments[i+1]
		case strings.HasPrefix(arg, "-config="):
			return strings.TrimPrefix(arg, "-config=")
		}
	}

	if s, ok := lookupEnvironment(environment, "config"); ok {
		return s
	}

	for _, f := range fields {
		if f.name == "config" {
			return f.String()
		}
	}

	return ""
}

func lookupEnvironment(environment []string, name string) (string, bool) {
	prefix := strings.ToLower(name + "=")

	for _, e := range environment {
		if strings.HasPrefix(strings.ToLower(e), prefix) {
			return e[len(prefix):], true
		}
	}

	return "", false
}

func readFile(filePath string, out interface{}) error {
	fd, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("readFile: could not open config file: %w", err)
	}
	defer fd.Close()

	var decode func(r io.Reader) error
	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		decode = func(r io.Reader) error { return yaml.NewDecoder(r).Decode(out) }
	case ".toml":
		decode = func(r io.Reader) error { return toml.NewDecoder(r).Decode(out) }
	default:
		return fmt.Errorf("readFile: could not determine file type for %q", filePath)
	}

	if err := decode(fd); err != nil {
		return fmt.Errorf("readFile: could not parse %q: %w", filePath, err)
	}

	return nil
}

func readArguments(program string, fields []field, arguments []string) error {
	flagSet := flag.NewFlagSet(program, flag.ContinueOnError)

	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n", program)
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	for _, f := range fields {
		switch f.kind {
		case kindString:
			flagSet.StringVar(f.value.Addr().Interface().(*string), f.name, f.value.String(), f.help)
		case kindBool:
			flagSet.BoolVar(f.value.Addr().Interface().(*bool), f.name, f.value.Bool(), f.help)
		case kindInt:
			flagSet.IntVar(f.value.Addr().Interface().(*int), f.name, int(f.value.Int()), f.help)
		case kindText:
			ptr := f.value.Addr().Interface()
			flagSet.TextVar(ptr.(encoding.TextUnmarshaler), f.name, ptr.(encoding.TextMarshaler), f.help)
		}
	}

	return flagSet.Parse(arguments)
}

func readEnvironment(fields []field, environment []string) error {
	for _, f := range fields {
		s, ok := lookupEnvironment(environment, f.name)
		if !ok {
			continue
		}

		if err := f.Set(s); err != nil {
			return fmt.Errorf("configreader.readEnvironment: %w", err)
		}
	}

	return nil
}
