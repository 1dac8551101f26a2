package docgen

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupExtractor(t *testing.T) *Extractor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	e := New(logger)
	t.Cleanup(func() { e.Close() })
	return e
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "Failed to read fixture: %s", name)
	return content
}

func parseFixture(t *testing.T, e *Extractor, name string) []*Documentation {
	t.Helper()
	docs, err := e.Parse(readFixture(t, name), FindAllComponentDefinitions, DefaultHandlers(), Options{Filename: name})
	require.NoError(t, err)
	return docs
}

func propNames(doc *Documentation) []string {
	var names []string
	for pair := doc.Props.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func mustProp(t *testing.T, doc *Documentation, name string) *Prop {
	t.Helper()
	p, ok := doc.Props.Get(name)
	require.True(t, ok, "prop %s missing", name)
	return p
}

func TestParse_Classes(t *testing.T) {
	e := setupExtractor(t)
	docs := parseFixture(t, e, "classes.js")

	require.Len(t, docs, 6, "all components in the file are found")

	total := 0
	for _, doc := range docs {
		total += doc.Props.Len()
	}
	assert.Equal(t, 14, total)

	t.Run("class with static propTypes", func(t *testing.T) {
		baz := docs[0]
		assert.Equal(t, "Description!\n\n@alias My.Baz", baz.Description)
		assert.Equal(t, []string{"objProp", "reqProp", "funcProp", "stringProp", "boolProp", "data-attr"}, propNames(baz))

		obj := mustProp(t, baz, "objProp")
		assert.Equal(t, &PropType{Name: "object"}, obj.Type)
		assert.False(t, obj.Required)
		assert.Equal(t,
			"An object hash of field (fix this @mention?) errors for the form.\n@type {Foo}\n@default blue",
			obj.Description)

		assert.True(t, mustProp(t, baz, "reqProp").Required)
		assert.True(t, mustProp(t, baz, "funcProp").Required)
		assert.Equal(t, "Callback **that** is fired when a validation error occurs.", mustProp(t, baz, "funcProp").Description)
		assert.Equal(t, &DefaultValue{Value: "'hello'"}, mustProp(t, baz, "stringProp").DefaultValue)
	})

	t.Run("methods with jsdoc", func(t *testing.T) {
		baz := docs[0]
		require.Len(t, baz.Methods, 1, "lifecycle methods are skipped")
		focus := baz.Methods[0]
		assert.Equal(t, "focus", focus.Name)
		assert.Equal(t, "Focus the input.", focus.Description)
		require.Len(t, focus.Params, 1)
		assert.Equal(t, "select", focus.Params[0].Name)
		assert.Equal(t, &TypeDescriptor{Name: "boolean"}, focus.Params[0].Type)
		assert.Equal(t, "Select text after focusing", focus.Params[0].Description)
		require.NotNil(t, focus.Returns)
		assert.Equal(t, &TypeDescriptor{Name: "void"}, focus.Returns.Type)
	})

	t.Run("stateless with static assignment", func(t *testing.T) {
		buz := docs[1]
		assert.Equal(t, "A functional component.", buz.Description)
		size := mustProp(t, buz, "size")
		assert.Equal(t, "Size of the thing", size.Description)
		assert.Equal(t, "enum", size.Type.Name)
		assert.Equal(t, []EnumValue{{Value: "'sm'"}, {Value: "'md'"}, {Value: "'lg'"}}, size.Type.Enum)
		assert.Equal(t, &DefaultValue{Value: "'md'"}, size.DefaultValue, "destructuring default")
	})

	t.Run("shape and union", func(t *testing.T) {
		foo := docs[2]
		shape := mustProp(t, foo, "shape").Type
		assert.Equal(t, "shape", shape.Name)
		require.Len(t, shape.Shape, 2)
		assert.Equal(t, "a", shape.Shape[0].Name)
		assert.True(t, shape.Shape[0].Type.Required)
		assert.Equal(t, "A", shape.Shape[0].Description)
		assert.Equal(t, "number", shape.Shape[1].Type.Name)

		union := mustProp(t, foo, "union").Type
		assert.Equal(t, "union", union.Name)
		assert.Equal(t, []*PropType{{Name: "string"}, {Name: "number"}}, union.Of)
	})

	t.Run("member assigned class", func(t *testing.T) {
		assert.Equal(t, []string{"children"}, propNames(docs[3]))
	})

	t.Run("duplicate doclets stay in the docblock", func(t *testing.T) {
		bar := docs[4]
		assert.Equal(t, "Bar docs.\n\n@property {string} first the first\n@property {string} second the second", bar.Description)
	})

	t.Run("createClass", func(t *testing.T) {
		qux := docs[5]
		assert.Equal(t, []string{"value", "items"}, propNames(qux))
		assert.Equal(t, "Qux value", mustProp(t, qux, "value").Description)
		items := mustProp(t, qux, "items")
		assert.Equal(t, "arrayOf", items.Type.Name)
		assert.Equal(t, &DefaultValue{Value: "[]"}, items.DefaultValue)
		assert.Empty(t, qux.Methods)
	})
}

func TestParse_DisplayNameIsLeftToCaller(t *testing.T) {
	e := setupExtractor(t)
	for _, doc := range parseFixture(t, e, "classes.js") {
		assert.Empty(t, doc.DisplayName)
	}
}

func TestParse_Flow(t *testing.T) {
	e := setupExtractor(t)
	docs := parseFixture(t, e, "flow.js")
	require.Len(t, docs, 1)

	size := mustProp(t, docs[0], "size")
	assert.Equal(t, &TypeDescriptor{Name: "number"}, size.FlowType)
	assert.Nil(t, size.TSType)
	assert.True(t, size.Required)
	assert.Equal(t, "Avatar size in pixels", size.Description)

	assert.False(t, mustProp(t, docs[0], "alt").Required)
}

func TestParse_TypeScript(t *testing.T) {
	e := setupExtractor(t)
	docs := parseFixture(t, e, "Button.tsx")
	require.Len(t, docs, 1)
	doc := docs[0]

	assert.Equal(t, "A button.", doc.Description)
	assert.Equal(t, []string{"./base"}, doc.Composes, "extended imported interface is composed")
	assert.Equal(t, []string{"label", "variant", "onClick"}, propNames(doc))

	label := mustProp(t, doc, "label")
	assert.Equal(t, &TypeDescriptor{Name: "string"}, label.TSType)
	assert.True(t, label.Required)
	assert.Equal(t, "Button label", label.Description)

	variant := mustProp(t, doc, "variant")
	assert.Equal(t, &TypeDescriptor{Name: "Variant"}, variant.TSType)
	assert.False(t, variant.Required)
	assert.Equal(t, &DefaultValue{Value: "'primary'"}, variant.DefaultValue)

	onClick := mustProp(t, doc, "onClick")
	assert.Equal(t, "signature", onClick.TSType.Name)
}

func TestParse_WrappedComponents(t *testing.T) {
	e := setupExtractor(t)
	src := []byte(`
import React from 'react';
import PropTypes from 'prop-types';
import shared from './shared';

const Input = React.forwardRef((props, ref) => <input ref={ref} {...props} />);
Input.propTypes = {
  ...shared.propTypes,
  value: PropTypes.string,
};

export const Memo = React.memo(function Memo() {
  return <div />;
});
`)
	docs, err := e.Parse(src, FindAllComponentDefinitions, DefaultHandlers(), Options{Filename: "wrapped.js"})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, []string{"value"}, propNames(docs[0]))
	assert.Equal(t, []string{"./shared"}, docs[0].Composes)
}

func TestResolvers(t *testing.T) {
	e := setupExtractor(t)
	src := readFixture(t, "classes.js")

	var names []string
	record := HandlerFunc(func(doc *Documentation, def *Definition, f *File) {
		names = append(names, def.Name)
	})

	_, err := e.Parse(src, FindAllExportedComponentDefinitions, []Handler{record}, Options{Filename: "classes.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Baz", "Bar"}, names)

	_, err = e.Parse(src, FindExportedComponentDefinition, nil, Options{Filename: "classes.js"})
	assert.ErrorIs(t, err, ErrMultipleDefinitions)

	names = nil
	_, err = e.Parse(src, FindAllComponentDefinitions, []Handler{record}, Options{Filename: "classes.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Baz", "Buz", "Foo", "Baz.Foo", "Bar", "Qux"}, names)
}

func TestResolverByName(t *testing.T) {
	for _, name := range []string{"", "findAllComponentDefinitions", "findAllExportedComponentDefinitions", "findExportedComponentDefinition"} {
		r, err := ResolverByName(name)
		require.NoError(t, err)
		assert.NotNil(t, r)
	}
	_, err := ResolverByName("nope")
	assert.Error(t, err)
}

func TestStaticDisplayName(t *testing.T) {
	e := setupExtractor(t)

	got := map[string]string{}
	handler := HandlerFunc(func(doc *Documentation, def *Definition, f *File) {
		if name, ok := StaticDisplayName(def, f); ok {
			got[def.Name] = name
		}
	})
	_, err := e.Parse(readFixture(t, "classes.js"), nil, []Handler{handler}, Options{Filename: "classes.js"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Bar": "Bar", "Qux": "Qux"}, got)
}

func TestParse_NoComponents(t *testing.T) {
	e := setupExtractor(t)

	_, err := e.Parse(readFixture(t, "plain.js"), nil, DefaultHandlers(), Options{Filename: "plain.js"})
	assert.ErrorIs(t, err, ErrNoComponentDefinitions)

	_, err = e.Parse([]byte(""), nil, DefaultHandlers(), Options{Filename: "empty.js"})
	assert.ErrorIs(t, err, ErrNoComponentDefinitions)
}

func TestParse_SyntaxError(t *testing.T) {
	e := setupExtractor(t)
	src := readFixture(t, "broken.js")

	_, err := e.Parse(src, nil, DefaultHandlers(), Options{
		Filename: filepath.Join("/project", "src", "broken.js"),
		Cwd:      "/project",
	})
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, filepath.Join("src", "broken.js"), perr.Filename)
	require.NotNil(t, perr.Location)
	assert.GreaterOrEqual(t, perr.Location.Line, 3)
	assert.GreaterOrEqual(t, perr.Location.Column, 1)
}

func TestParse_ErrorRecovery(t *testing.T) {
	e := setupExtractor(t)
	src := []byte("const Ok = () => <div />;\nconst b = ;\n")

	_, err := e.Parse(src, nil, DefaultHandlers(), Options{Filename: "partial.js"})
	require.Error(t, err)

	docs, err := e.Parse(src, nil, DefaultHandlers(), Options{
		Filename:      "partial.js",
		ParserOptions: ParserOptions{ErrorRecovery: true},
	})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestHandlersRunInOrder(t *testing.T) {
	e := setupExtractor(t)

	var calls []string
	first := HandlerFunc(func(doc *Documentation, def *Definition, f *File) {
		calls = append(calls, "first")
		doc.DisplayName = "Set"
	})
	second := HandlerFunc(func(doc *Documentation, def *Definition, f *File) {
		calls = append(calls, "second:"+doc.DisplayName)
	})

	_, err := e.Parse(readFixture(t, "unnamed.js"), nil, []Handler{first, second}, Options{Filename: "unnamed.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second:Set"}, calls)
}
