package commands

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
	"github.com/rios0rios0/lockbump/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/lockbump/internal/infrastructure/repositories"
	"github.com/rios0rios0/lockbump/internal/lockfile"
	"github.com/rios0rios0/lockbump/internal/requirements"
)

// Update is the interface for the update command.
type Update interface {
	Execute(ctx context.Context, settings *entities.Settings, input UpdateInput) ([]entities.ManagedFile, error)
}

// UpdateInput holds the files and dependency changes of a single update run.
type UpdateInput struct {
	Files        []entities.ManagedFile
	Dependencies []entities.Dependency
	Credentials  []entities.Credential
}

// UpdateCommand regenerates compiled requirement files and patches manifests
// and plain requirement files so that they reflect new dependency versions:
// classify -> sanitize -> regenerate -> patch -> assemble -> verify.
type UpdateCommand struct {
	resolverRegistry  *infraRepos.ResolverRegistry
	sanitizerRegistry *infraRepos.SanitizerRegistry
	workspaceFactory  infraRepos.WorkspaceFactory
}

// NewUpdateCommand creates a new UpdateCommand.
func NewUpdateCommand(
	resolverRegistry *infraRepos.ResolverRegistry,
	sanitizerRegistry *infraRepos.SanitizerRegistry,
	workspaceFactory infraRepos.WorkspaceFactory,
) *UpdateCommand {
	return &UpdateCommand{
		resolverRegistry:  resolverRegistry,
		sanitizerRegistry: sanitizerRegistry,
		workspaceFactory:  workspaceFactory,
	}
}

// Execute applies every dependency in order, each run seeing the files
// produced by the previous one, and returns the files whose content changed:
// manifests first, then compiled files, then plain requirement files.
func (it *UpdateCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	input UpdateInput,
) ([]entities.ManagedFile, error) {
	if len(input.Dependencies) == 0 {
		return nil, errors.New("no dependencies to update")
	}

	classifier, err := newFileClassifier(settings.Files, input.Files)
	if err != nil {
		return nil, fmt.Errorf("invalid file patterns: %w", err)
	}

	credentials := input.Credentials
	if len(credentials) == 0 {
		credentials = settings.Credentials
	}

	files := slices.Clone(input.Files)
	for _, dependency := range input.Dependencies {
		run := &updateRun{
			command:     it,
			settings:    settings,
			classifier:  classifier,
			dependency:  dependency,
			credentials: credentials,
			files:       files,
		}
		updated, runErr := run.execute(ctx)
		if runErr != nil {
			return nil, runErr
		}
		files = replaceFiles(files, updated)
	}

	return changedFiles(classifier, input.Files, files), nil
}

// replaceFiles returns files with every entry of updated swapped in by name.
func replaceFiles(files, updated []entities.ManagedFile) []entities.ManagedFile {
	result := slices.Clone(files)
	for _, file := range updated {
		for i := range result {
			if cleanName(result[i].Name) == cleanName(file.Name) {
				result[i] = file
			}
		}
	}
	return result
}

// changedFiles returns the files whose content differs from the originals,
// ordered by role and then by input order.
func changedFiles(classifier *fileClassifier, originals, files []entities.ManagedFile) []entities.ManagedFile {
	var changed []entities.ManagedFile
	for i, file := range files {
		if file.Content != originals[i].Content {
			changed = append(changed, file)
		}
	}
	slices.SortStableFunc(changed, func(a, b entities.ManagedFile) int {
		return int(classifier.role(a.Name)) - int(classifier.role(b.Name))
	})
	return changed
}

// updateRun holds the state of a single dependency update.
type updateRun struct {
	command     *UpdateCommand
	settings    *entities.Settings
	classifier  *fileClassifier
	dependency  entities.Dependency
	credentials []entities.Credential
	files       []entities.ManagedFile
	updated     []entities.ManagedFile
}

func (it *updateRun) execute(ctx context.Context) ([]entities.ManagedFile, error) {
	dependency := it.dependency
	logger.Infof(
		"Updating %s from %s to %s (%s %s)",
		dependency.Name, dependency.PreviousVersion, dependency.Version,
		dependency.ChangeType(), dependency.Direction(),
	)

	if toCompile := it.compileSet(); len(toCompile) > 0 {
		if err := it.regenerate(ctx, toCompile); err != nil {
			return nil, err
		}
	}
	if err := it.patchManifests(); err != nil {
		return nil, err
	}
	if err := it.patchPlainFiles(); err != nil {
		return nil, err
	}

	if len(it.updated) == 0 {
		return nil, entities.NewUpdateError(dependency.Name, "", entities.ErrNoOpUpdate)
	}

	slices.SortStableFunc(it.updated, func(a, b entities.ManagedFile) int {
		return int(it.classifier.role(a.Name)) - int(it.classifier.role(b.Name))
	})
	for _, file := range it.updated {
		logger.Infof("Updated %s", file.Name)
	}
	return it.updated, nil
}

func (it *updateRun) file(name string) (entities.ManagedFile, bool) {
	for _, file := range it.files {
		if cleanName(file.Name) == cleanName(name) {
			return file, true
		}
	}
	return entities.ManagedFile{}, false
}

func (it *updateRun) isUpdated(name string) bool {
	return slices.ContainsFunc(it.updated, func(file entities.ManagedFile) bool {
		return cleanName(file.Name) == cleanName(name)
	})
}

// compileSet returns the manifests whose compiled file must be regenerated:
// those declaring the dependency and those whose compiled file pins it.
// A manifest is ordered after every manifest it includes.
func (it *updateRun) compileSet() []entities.ManagedFile {
	var selected []entities.ManagedFile
	for _, file := range it.files {
		if it.classifier.role(file.Name) != roleManifest {
			continue
		}
		compiled, ok := it.file(compiledName(file.Name))
		if !ok {
			continue
		}
		_, declared := it.dependency.RequirementFor(file.Name)
		if declared || lockfile.IncludesPackage(compiled.Content, it.dependency.Name) {
			selected = append(selected, file)
		}
	}
	return orderByIncludes(selected)
}

// orderByIncludes sorts manifests so that included files come first,
// otherwise keeping the input order.
func orderByIncludes(manifests []entities.ManagedFile) []entities.ManagedFile {
	index := make(map[string]int, len(manifests))
	for i, manifest := range manifests {
		index[cleanName(manifest.Name)] = i
	}

	var ordered []entities.ManagedFile
	state := make([]int, len(manifests)) // 0 new, 1 visiting, 2 done
	var visit func(i int)
	visit = func(i int) {
		if state[i] != 0 {
			return
		}
		state[i] = 1
		dir := path.Dir(cleanName(manifests[i].Name))
		for _, child := range requirements.ChildRequirementFiles(manifests[i].Content) {
			if j, ok := index[cleanName(path.Join(dir, child))]; ok {
				visit(j)
			}
		}
		state[i] = 2
		ordered = append(ordered, manifests[i])
	}
	for i := range manifests {
		visit(i)
	}
	return ordered
}

// regenerate seeds a workspace, runs the resolver for every manifest and
// merges the fresh output into the existing compiled files.
func (it *updateRun) regenerate(ctx context.Context, manifests []entities.ManagedFile) error {
	dependency := it.dependency

	resolver, err := it.command.resolverRegistry.Get(dependency.PackageManager, it.settings.Resolver)
	if err != nil {
		return entities.NewUpdateError(dependency.Name, "", err)
	}

	workspaces := it.command.workspaceFactory(it.settings.Workspace)
	workspace, err := workspaces.Acquire(ctx)
	if err != nil {
		return entities.NewUpdateError(dependency.Name, "", err)
	}
	defer func() {
		if releaseErr := workspaces.Release(workspace); releaseErr != nil {
			logger.Warnf("[workspace] Failed to release %s: %v", workspace.ID, releaseErr)
		}
	}()

	if seedErr := it.seed(ctx, workspaces, workspace); seedErr != nil {
		return entities.NewUpdateError(dependency.Name, "", seedErr)
	}

	for _, manifest := range manifests {
		if compileErr := it.compile(ctx, resolver, workspaces, workspace, manifest); compileErr != nil {
			return compileErr
		}
	}
	return nil
}

func (it *updateRun) compile(
	ctx context.Context,
	resolver repositories.ResolverRepository,
	workspaces repositories.WorkspaceRepository,
	workspace *entities.Workspace,
	manifest entities.ManagedFile,
) error {
	dependency := it.dependency
	compiled, _ := it.file(compiledName(manifest.Name))

	request := entities.CompileRequest{
		ManifestFile:   cleanName(manifest.Name),
		OutputFile:     compiledName(manifest.Name),
		UpgradePackage: dependency.Name,
		UpgradeVersion: dependency.Version,
		GenerateHashes: lockfile.Parse(compiled.Content).Style.Hashed,
		Credentials:    it.credentials,
	}
	if _, err := resolver.Compile(ctx, workspace, request); err != nil {
		return entities.NewUpdateError(dependency.Name, manifest.Name, err)
	}

	if it.settings.Resolver.ShouldReannotate() {
		request.UpgradePackage = ""
		request.UpgradeVersion = ""
		if _, err := resolver.Compile(ctx, workspace, request); err != nil {
			return entities.NewUpdateError(dependency.Name, manifest.Name, err)
		}
	}

	fresh, err := workspaces.ReadFile(workspace, request.OutputFile)
	if err != nil {
		return entities.NewUpdateError(dependency.Name, compiled.Name, err)
	}
	merged, err := lockfile.Merge(compiled.Content, fresh)
	if err != nil {
		return entities.NewUpdateError(dependency.Name, compiled.Name, err)
	}
	if merged != compiled.Content {
		it.updated = append(it.updated, compiled.WithContent(merged))
	}
	return nil
}

// seed writes every file into the workspace. Manifests declaring the
// dependency get it frozen to the target version and build scripts are
// replaced by their sanitized form.
func (it *updateRun) seed(
	ctx context.Context,
	workspaces repositories.WorkspaceRepository,
	workspace *entities.Workspace,
) error {
	sanitized, err := it.sanitizeSupporting(ctx)
	if err != nil {
		return err
	}

	for _, file := range it.files {
		content := file.Content
		switch it.classifier.role(file.Name) {
		case roleManifest:
			if it.dependency.Version != "" && requirements.Declares(content, it.dependency.Name) {
				content = requirements.Freeze(content, it.dependency.Name, it.dependency.Version)
			}
		case roleSupporting:
			if text, ok := sanitized[cleanName(file.Name)]; ok {
				content = text
			}
		}
		if writeErr := workspaces.WriteFile(workspace, cleanName(file.Name), content); writeErr != nil {
			return writeErr
		}
	}
	return nil
}

// sanitizeSupporting rewrites every supporting build script concurrently.
func (it *updateRun) sanitizeSupporting(ctx context.Context) (map[string]string, error) {
	var scripts []entities.ManagedFile
	var sanitizers []repositories.SanitizerRepository
	for _, file := range it.files {
		if it.classifier.role(file.Name) != roleSupporting {
			continue
		}
		sanitizer := it.command.sanitizerRegistry.ForFile(file.Name, it.settings.Sanitizer)
		if sanitizer == nil {
			continue
		}
		scripts = append(scripts, file)
		sanitizers = append(sanitizers, sanitizer)
	}

	results := make([]entities.SanitizedText, len(scripts))
	group, groupCtx := errgroup.WithContext(ctx)
	for i := range scripts {
		group.Go(func() error {
			results[i] = sanitizers[i].Sanitize(groupCtx, scripts[i])
			return groupCtx.Err()
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sanitized := make(map[string]string, len(scripts))
	for i, script := range scripts {
		facts := results[i].Facts
		logger.Debugf(
			"[sanitizer] %s: package %q, %d declared requirements",
			script.Name, facts.PackageName, len(facts.Requirements),
		)
		sanitized[cleanName(script.Name)] = results[i].Text
	}
	return sanitized, nil
}

// patchManifests rewrites manifests whose requirement string changed.
func (it *updateRun) patchManifests() error {
	for _, file := range it.files {
		if it.classifier.role(file.Name) != roleManifest {
			continue
		}
		if err := it.patch(file); err != nil {
			return err
		}
	}
	return nil
}

// patchPlainFiles rewrites the remaining files carrying a requirement record.
func (it *updateRun) patchPlainFiles() error {
	for _, requirement := range it.dependency.Requirements {
		file, ok := it.file(requirement.File)
		if !ok || it.isUpdated(file.Name) {
			continue
		}
		switch it.classifier.role(file.Name) {
		case roleManifest, roleCompiled, roleSupporting:
			continue
		}
		if err := it.patch(file); err != nil {
			return err
		}
	}
	return nil
}

func (it *updateRun) patch(file entities.ManagedFile) error {
	dependency := it.dependency
	current, hasCurrent := dependency.RequirementFor(file.Name)
	previous, hasPrevious := dependency.PreviousRequirementFor(file.Name)
	if !hasCurrent || !hasPrevious || !current.HasRequirement() || !previous.HasRequirement() {
		return nil
	}
	if current.RequirementString() == previous.RequirementString() {
		return nil
	}

	patched, err := requirements.Patch(
		file.Content, dependency.Name, previous.RequirementString(), current.RequirementString(),
	)
	if err != nil {
		return entities.NewUpdateError(dependency.Name, file.Name, err)
	}
	if patched != file.Content {
		it.updated = append(it.updated, file.WithContent(patched))
	}
	return nil
}
