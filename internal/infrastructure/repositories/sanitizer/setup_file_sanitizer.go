package sanitizer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

const defaultPackageName = "default-package-name"

// requirement keyword arguments copied into the sanitized script, in output order
var requirementKeywords = []string{"install_requires", "setup_requires", "tests_require"}

// SetupFileSanitizer replaces a setup.py with a minimal script that declares
// the same package name and requirements and does nothing else.
type SetupFileSanitizer struct {
	replacementVersion string
}

// NewSetupFileSanitizer creates a setup.py sanitizer.
func NewSetupFileSanitizer(settings entities.SanitizerSettings) *SetupFileSanitizer {
	return &SetupFileSanitizer{replacementVersion: settings.ReplacementVersion}
}

// Name returns the sanitizer identifier.
func (it *SetupFileSanitizer) Name() string { return "setup.py" }

// Supports returns true for setup.py files.
func (it *SetupFileSanitizer) Supports(fileName string) bool {
	return path.Base(fileName) == "setup.py"
}

// Sanitize rewrites the file content.
func (it *SetupFileSanitizer) Sanitize(ctx context.Context, file entities.ManagedFile) entities.SanitizedText {
	result := it.Rewrite(ctx, file.Content)
	if result.IsDegraded() {
		logger.Warnf("[sanitizer] %s: %v", file.Name, result.Degraded)
	}
	return result
}

// Rewrite reads the literal arguments of the setup() call in source and
// renders them into a new script.
func (it *SetupFileSanitizer) Rewrite(ctx context.Context, source string) (result entities.SanitizedText) {
	defer func() {
		if r := recover(); r != nil {
			result = it.render(setupArguments{}, fmt.Errorf("%w: %v", entities.ErrSanitizationDegraded, r))
		}
	}()

	src := []byte(source)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return it.render(setupArguments{}, fmt.Errorf("%w: %w", entities.ErrSanitizationDegraded, err))
	}
	defer tree.Close()

	reader := &setupReader{src: src, variables: make(map[string]*sitter.Node)}
	root := tree.RootNode()
	reader.collectVariables(root)

	call := reader.findSetupCall(root)
	if call == nil {
		return it.render(setupArguments{}, fmt.Errorf("%w: no setup() call found", entities.ErrSanitizationDegraded))
	}

	args := reader.readArguments(call)
	var degraded error
	if len(reader.problems) > 0 || root.HasError() {
		problems := slices.Clone(reader.problems)
		if root.HasError() {
			problems = append(problems, "source has syntax errors")
		}
		degraded = fmt.Errorf("%w: %s", entities.ErrSanitizationDegraded, strings.Join(problems, "; "))
	}
	return it.render(args, degraded)
}

type setupArguments struct {
	name         string
	requirements map[string][]string
	extras       map[string][]string
}

func (it *SetupFileSanitizer) render(args setupArguments, degraded error) entities.SanitizedText {
	name := args.name
	if name == "" {
		name = defaultPackageName
	}

	parts := []string{
		"name=" + strconv.Quote(name),
		"version=" + strconv.Quote(it.replacementVersion),
	}
	var declared []string
	for _, keyword := range requirementKeywords {
		reqs, ok := args.requirements[keyword]
		if !ok {
			continue
		}
		parts = append(parts, keyword+"="+quoteList(reqs))
		declared = append(declared, reqs...)
	}
	if args.extras != nil {
		keys := make([]string, 0, len(args.extras))
		for key := range args.extras {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		entries := make([]string, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, strconv.Quote(key)+":"+quoteList(args.extras[key]))
			declared = append(declared, args.extras[key]...)
		}
		parts = append(parts, "extras_require={"+strings.Join(entries, ",")+"}")
	}

	return entities.SanitizedText{
		Text: "from setuptools import setup\n\nsetup(" + strings.Join(parts, ",") + ")\n",
		Facts: entities.ScriptFacts{
			PackageName:  args.name,
			Requirements: declared,
		},
		Degraded: degraded,
	}
}

func quoteList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, strconv.Quote(value))
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

type setupReader struct {
	src       []byte
	variables map[string]*sitter.Node
	problems  []string
}

// collectVariables records module level "name = value" assignments.
func (it *setupReader) collectVariables(root *sitter.Node) {
	for i := range int(root.NamedChildCount()) {
		statement := root.NamedChild(i)
		if statement.Type() != "expression_statement" || statement.NamedChildCount() == 0 {
			continue
		}
		assignment := statement.NamedChild(0)
		if assignment.Type() != "assignment" {
			continue
		}
		left := assignment.ChildByFieldName("left")
		right := assignment.ChildByFieldName("right")
		if left != nil && right != nil && left.Type() == "identifier" {
			it.variables[nodeText(left, it.src)] = right
		}
	}
}

func (it *setupReader) findSetupCall(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	walk(root, func(node *sitter.Node) bool {
		if found != nil {
			return false
		}
		if node.Type() != "call" {
			return true
		}
		function := node.ChildByFieldName("function")
		if function == nil {
			return true
		}
		name := nodeText(function, it.src)
		if name == "setup" || strings.HasSuffix(name, ".setup") {
			found = node
			return false
		}
		return true
	})
	return found
}

func (it *setupReader) readArguments(call *sitter.Node) setupArguments {
	args := setupArguments{requirements: make(map[string][]string)}
	arguments := call.ChildByFieldName("arguments")
	if arguments == nil {
		return args
	}

	for i := range int(arguments.NamedChildCount()) {
		argument := arguments.NamedChild(i)
		if argument.Type() != "keyword_argument" {
			continue
		}
		key := argument.ChildByFieldName("name")
		value := argument.ChildByFieldName("value")
		if key == nil || value == nil {
			continue
		}

		keyword := nodeText(key, it.src)
		switch {
		case keyword == "name":
			name, err := it.stringValue(value, 0)
			if err != nil {
				it.problems = append(it.problems, fmt.Sprintf("name: %v", err))
				continue
			}
			args.name = name
		case slices.Contains(requirementKeywords, keyword):
			reqs, err := it.listValue(value, 0)
			if err != nil {
				it.problems = append(it.problems, fmt.Sprintf("%s: %v", keyword, err))
				continue
			}
			args.requirements[keyword] = reqs
		case keyword == "extras_require":
			extras, err := it.dictValue(value, 0)
			if err != nil {
				it.problems = append(it.problems, fmt.Sprintf("extras_require: %v", err))
				continue
			}
			args.extras = extras
		}
	}
	return args
}

const maxIndirection = 8

var errNotLiteral = errors.New("value is not a literal")

// resolve follows identifiers to their module level assignment.
func (it *setupReader) resolve(node *sitter.Node, depth int) (*sitter.Node, error) {
	for node.Type() == "identifier" || node.Type() == "parenthesized_expression" {
		if depth > maxIndirection {
			return nil, errNotLiteral
		}
		depth++
		if node.Type() == "parenthesized_expression" {
			if node.NamedChildCount() != 1 {
				return nil, errNotLiteral
			}
			node = node.NamedChild(0)
			continue
		}
		value, ok := it.variables[nodeText(node, it.src)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errNotLiteral, nodeText(node, it.src))
		}
		node = value
	}
	return node, nil
}

func (it *setupReader) stringValue(node *sitter.Node, depth int) (string, error) {
	node, err := it.resolve(node, depth)
	if err != nil {
		return "", err
	}
	switch node.Type() {
	case "string":
		return pythonStringLiteral(nodeText(node, it.src))
	case "concatenated_string":
		var builder strings.Builder
		for i := range int(node.NamedChildCount()) {
			part, partErr := pythonStringLiteral(nodeText(node.NamedChild(i), it.src))
			if partErr != nil {
				return "", partErr
			}
			builder.WriteString(part)
		}
		return builder.String(), nil
	default:
		return "", fmt.Errorf("%w: %s", errNotLiteral, node.Type())
	}
}

func (it *setupReader) listValue(node *sitter.Node, depth int) ([]string, error) {
	node, err := it.resolve(node, depth)
	if err != nil {
		return nil, err
	}
	switch node.Type() {
	case "string", "concatenated_string":
		value, valueErr := it.stringValue(node, depth)
		if valueErr != nil {
			return nil, valueErr
		}
		return splitRequirementLines(value), nil
	case "list", "tuple":
		values := []string{}
		for i := range int(node.NamedChildCount()) {
			if node.NamedChild(i).Type() == "comment" {
				continue
			}
			value, valueErr := it.stringValue(node.NamedChild(i), depth+1)
			if valueErr != nil {
				return nil, valueErr
			}
			values = append(values, value)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("%w: %s", errNotLiteral, node.Type())
	}
}

func (it *setupReader) dictValue(node *sitter.Node, depth int) (map[string][]string, error) {
	node, err := it.resolve(node, depth)
	if err != nil {
		return nil, err
	}
	if node.Type() != "dictionary" {
		return nil, fmt.Errorf("%w: %s", errNotLiteral, node.Type())
	}

	extras := make(map[string][]string)
	for i := range int(node.NamedChildCount()) {
		pair := node.NamedChild(i)
		if pair.Type() == "comment" {
			continue
		}
		if pair.Type() != "pair" {
			return nil, fmt.Errorf("%w: %s", errNotLiteral, pair.Type())
		}
		key, keyErr := it.stringValue(pair.ChildByFieldName("key"), depth+1)
		if keyErr != nil {
			return nil, keyErr
		}
		values, valuesErr := it.listValue(pair.ChildByFieldName("value"), depth+1)
		if valuesErr != nil {
			return nil, valuesErr
		}
		extras[key] = values
	}
	return extras, nil
}

func splitRequirementLines(value string) []string {
	var lines []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines
}

// pythonStringLiteral decodes a plain or raw Python string literal.
// Formatted and byte strings are rejected.
func pythonStringLiteral(literal string) (string, error) {
	prefixEnd := strings.IndexAny(literal, `"'`)
	if prefixEnd < 0 {
		return "", fmt.Errorf("%w: %s", errNotLiteral, literal)
	}
	prefix := strings.ToLower(literal[:prefixEnd])
	if strings.ContainsAny(prefix, "fb") {
		return "", fmt.Errorf("%w: %s-string", errNotLiteral, prefix)
	}
	body := literal[prefixEnd:]

	var quote string
	switch {
	case strings.HasPrefix(body, `"""`), strings.HasPrefix(body, `'''`):
		quote = body[:3]
	default:
		quote = body[:1]
	}
	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", fmt.Errorf("%w: unterminated string", errNotLiteral)
	}
	content := body[len(quote) : len(body)-len(quote)]
	if strings.Contains(prefix, "r") {
		return content, nil
	}

	replacer := strings.NewReplacer(`\\`, `\`, `\'`, `'`, `\"`, `"`, `\n`, "\n", `\t`, "\t")
	return replacer.Replace(content), nil
}
