package sanitizer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

var (
	loadingMethods = map[string]bool{
		"require":          true,
		"require_relative": true,
		"load":             true,
	}
	fileReadReceivers = map[string]bool{"File": true, "IO": true}
	fileReadMethods   = map[string]bool{"read": true, "readlines": true}
	// builder attributes that carry no dependency information
	irrelevantAttributes = map[string]bool{
		"post_install_message": true,
		"description":          true,
		"summary":              true,
		"homepage":             true,
		"email":                true,
		"authors":              true,
		"author":               true,
		"license":              true,
		"licenses":             true,
		"metadata":             true,
		"bindir":               true,
		"executables":          true,
		"extra_rdoc_files":     true,
		"rdoc_options":         true,
		"cert_chain":           true,
		"signing_key":          true,
		"test_files":           true,
		"require_paths":        true,
	}
	versionCopyMethods = map[string]bool{"dup": true, "to_s": true, "freeze": true}
	fileListValues     = map[string]bool{"call": true, "element_reference": true, "subshell": true}
	constantLike       = map[string]bool{"constant": true, "scope_resolution": true, "identifier": true}
	dependencyMethods  = map[string]bool{
		"add_dependency":             true,
		"add_runtime_dependency":     true,
		"add_development_dependency": true,
	}
)

// GemspecSanitizer rewrites Ruby gem specifications so they can be evaluated
// without reading project files or loading project code.
type GemspecSanitizer struct {
	replacementVersion string
}

// NewGemspecSanitizer creates a sanitizer that substitutes dynamic versions
// with the configured replacement version.
func NewGemspecSanitizer(settings entities.SanitizerSettings) *GemspecSanitizer {
	return &GemspecSanitizer{replacementVersion: settings.ReplacementVersion}
}

// Name returns the sanitizer identifier.
func (it *GemspecSanitizer) Name() string { return "gemspec" }

// Supports returns true for *.gemspec files.
func (it *GemspecSanitizer) Supports(fileName string) bool {
	return strings.HasSuffix(fileName, ".gemspec")
}

// Sanitize rewrites the file content.
func (it *GemspecSanitizer) Sanitize(ctx context.Context, file entities.ManagedFile) entities.SanitizedText {
	result := it.Rewrite(ctx, file.Content)
	if result.IsDegraded() {
		logger.Warnf("[sanitizer] %s: %v", file.Name, result.Degraded)
	}
	return result
}

// Rewrite applies the gemspec rewrite rules to source. It never returns an
// error: failures are reported through SanitizedText.Degraded together with
// best-effort text.
func (it *GemspecSanitizer) Rewrite(ctx context.Context, source string) (result entities.SanitizedText) {
	result.Text = source
	defer func() {
		if r := recover(); r != nil {
			result = entities.SanitizedText{
				Text:     source,
				Degraded: fmt.Errorf("%w: %v", entities.ErrSanitizationDegraded, r),
			}
		}
	}()

	src := []byte(source)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(ruby.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		result.Degraded = fmt.Errorf("%w: %w", entities.ErrSanitizationDegraded, err)
		return result
	}
	defer tree.Close()

	root := tree.RootNode()
	rewrite := &gemspecRewrite{
		src:         src,
		replacement: strconv.Quote(it.replacementVersion),
	}
	walk(root, func(node *sitter.Node) bool {
		if node.Type() == "heredoc_body" {
			rewrite.heredocs = append(rewrite.heredocs, node)
		}
		return true
	})
	rewrite.visit(root, false)

	text, applyErr := applyEdits(src, rewrite.edits)
	result.Text = text
	result.Facts = rewrite.facts
	switch {
	case applyErr != nil:
		result.Degraded = fmt.Errorf("%w: %w", entities.ErrSanitizationDegraded, applyErr)
	case root.HasError():
		result.Degraded = fmt.Errorf("%w: source has syntax errors", entities.ErrSanitizationDegraded)
	}
	return result
}

type gemspecRewrite struct {
	src         []byte
	replacement string
	heredocs    []*sitter.Node
	edits       []edit
	facts       entities.ScriptFacts
}

// visit collects edits for node and its descendants. Descendants of a
// rewritten node are not visited, which keeps the edits non-overlapping.
func (it *gemspecRewrite) visit(node *sitter.Node, inAssignment bool) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "call":
		if it.rewriteLoading(node) {
			return
		}
		if inAssignment && it.rewriteFileRead(node) {
			return
		}
		it.recordDependency(node)
	case "assignment":
		if !it.rewriteAssignment(node) {
			it.visit(node.ChildByFieldName("right"), true)
		}
		return
	}

	for i := range int(node.NamedChildCount()) {
		it.visit(node.NamedChild(i), inAssignment)
	}
}

// rewriteLoading removes require, require_relative and load calls.
func (it *gemspecRewrite) rewriteLoading(node *sitter.Node) bool {
	if node.ChildByFieldName("receiver") != nil {
		return false
	}
	method := node.ChildByFieldName("method")
	arguments := node.ChildByFieldName("arguments")
	if method == nil || arguments == nil || !loadingMethods[nodeText(method, it.src)] {
		return false
	}
	if arguments.NamedChildCount() != 1 {
		return false
	}
	it.edits = append(it.edits, replaceNode(node, ""))
	return true
}

// rewriteFileRead replaces File.read(...) style calls with a string literal,
// leaving any method chained onto the result in place.
func (it *gemspecRewrite) rewriteFileRead(node *sitter.Node) bool {
	receiver := node.ChildByFieldName("receiver")
	method := node.ChildByFieldName("method")
	if receiver == nil || method == nil {
		return false
	}
	if receiver.Type() != "constant" || !fileReadReceivers[nodeText(receiver, it.src)] ||
		!fileReadMethods[nodeText(method, it.src)] {
		return false
	}
	it.edits = append(it.edits, replaceNode(node, `"text"`))
	return true
}

// rewriteAssignment handles assignments to builder attributes. It returns
// false when the assignment is not one it rewrites.
func (it *gemspecRewrite) rewriteAssignment(node *sitter.Node) bool {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "call" {
		return false
	}
	method := left.ChildByFieldName("method")
	if method == nil {
		return false
	}

	switch attribute := nodeText(method, it.src); {
	case irrelevantAttributes[attribute]:
		it.deleteAssignment(node)
	case attribute == "version":
		it.rewriteVersion(right)
	case attribute == "files":
		if !fileListValues[right.Type()] {
			return false
		}
		it.edits = append(it.edits, replaceNode(right, "[]"))
	case attribute == "name":
		if value, ok := it.literal(right); ok {
			it.facts.PackageName = value
		}
		return false
	default:
		return false
	}
	return true
}

// deleteAssignment removes the assignment and, when its value is a heredoc,
// the heredoc body up to and including the terminator.
func (it *gemspecRewrite) deleteAssignment(node *sitter.Node) {
	start, end := node.StartByte(), node.EndByte()

	hasHeredoc := false
	walk(node, func(child *sitter.Node) bool {
		if child.Type() == "heredoc_beginning" {
			hasHeredoc = true
		}
		return !hasHeredoc
	})
	if hasHeredoc {
		for _, body := range it.heredocs {
			if body.StartByte() >= start {
				end = max(end, body.EndByte())
				break
			}
		}
		for end > start && (it.src[end-1] == '\n' || it.src[end-1] == '\r') {
			end--
		}
	}

	it.edits = append(it.edits, edit{start: start, end: end})
}

// rewriteVersion replaces dynamic version expressions with the replacement
// literal. String literals are kept; interpolations inside them are replaced.
func (it *gemspecRewrite) rewriteVersion(value *sitter.Node) {
	switch value.Type() {
	case "string":
		for i := range int(value.NamedChildCount()) {
			part := value.NamedChild(i)
			if part.Type() != "interpolation" || part.NamedChildCount() == 0 {
				continue
			}
			first := part.NamedChild(0)
			last := part.NamedChild(int(part.NamedChildCount()) - 1)
			it.edits = append(it.edits, edit{
				start: first.StartByte(),
				end:   last.EndByte(),
				text:  it.replacement,
			})
		}
	case "constant", "scope_resolution", "identifier":
		it.edits = append(it.edits, replaceNode(value, it.replacement))
	case "call":
		receiver := value.ChildByFieldName("receiver")
		method := value.ChildByFieldName("method")
		bareCall := receiver == nil
		copied := receiver != nil && method != nil &&
			constantLike[receiver.Type()] && versionCopyMethods[nodeText(method, it.src)]
		if bareCall || copied {
			it.edits = append(it.edits, replaceNode(value, it.replacement))
			return
		}
		it.visit(value, true)
	default:
		it.visit(value, true)
	}
}

// recordDependency captures the gem name of add_dependency style calls.
func (it *gemspecRewrite) recordDependency(node *sitter.Node) {
	method := node.ChildByFieldName("method")
	arguments := node.ChildByFieldName("arguments")
	if method == nil || arguments == nil || !dependencyMethods[nodeText(method, it.src)] {
		return
	}
	if arguments.NamedChildCount() == 0 {
		return
	}
	if name, ok := it.literal(arguments.NamedChild(0)); ok {
		it.facts.Requirements = append(it.facts.Requirements, name)
	}
}

// literal returns the content of a string without interpolation.
func (it *gemspecRewrite) literal(node *sitter.Node) (string, bool) {
	if node.Type() != "string" {
		return "", false
	}
	var builder strings.Builder
	for i := range int(node.NamedChildCount()) {
		part := node.NamedChild(i)
		if part.Type() != "string_content" {
			return "", false
		}
		builder.WriteString(nodeText(part, it.src))
	}
	return builder.String(), true
}
