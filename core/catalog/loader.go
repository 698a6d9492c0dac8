package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"catalog-cost/core/pricing"
	"catalog-cost/core/types"
	"catalog-cost/internal/errors"
)

// Loader reads a catalog tree:
//
//	<root>/roles/<id>/meta/main.yml      role metadata (galaxy_info)
//	<root>/roles/<id>/meta/pricing.yml   pricing document (optional)
//	<root>/roles/categories.yml          category -> role IDs (optional)
//	<root>/bundles/<target>/<slug>/inventory.yml
//
// Roles without a valid pricing document fall back to the implicit
// per-user document and record a load warning instead of failing.
type Loader struct {
	root string
}

// NewLoader creates a loader for the given catalog root
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Load reads the whole tree into a fresh snapshot. A missing roles
// directory is an error; a missing bundles directory just yields an
// empty bundle list.
func (l *Loader) Load() (*Catalog, error) {
	rolesDir := filepath.Join(l.root, "roles")
	entries, err := os.ReadDir(rolesDir)
	if err != nil {
		return nil, errors.NotFound("roles directory", rolesDir)
	}

	categories := loadCategories(filepath.Join(rolesDir, "categories.yml"))

	var roles []types.Role
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		roleDir := filepath.Join(rolesDir, entry.Name())
		if _, err := os.Stat(filepath.Join(roleDir, "meta", "main.yml")); err != nil {
			continue
		}
		role := l.loadRole(roleDir, entry.Name())
		role.Categories = categories[role.ID]
		roles = append(roles, role)
	}

	bundles := l.loadBundles(filepath.Join(l.root, "bundles"))
	return New(roles, bundles), nil
}

// loadRole builds one role from its directory. Metadata problems
// never fail the load; they surface as warnings on the role.
func (l *Loader) loadRole(roleDir, id string) types.Role {
	role := types.Role{ID: id}

	meta, err := readYAMLFile(filepath.Join(roleDir, "meta", "main.yml"))
	if err != nil {
		role.Warnings = append(role.Warnings, fmt.Sprintf("role metadata ignored: %v", err))
		meta = map[string]interface{}{}
	}
	galaxy := asMap(meta["galaxy_info"])

	role.Title = cleanString(galaxy["display_name"])
	if role.Title == "" {
		role.Title = titleize(id)
	}
	role.Description = cleanString(galaxy["description"])
	role.Status = normalizeStatus(cleanString(galaxy["lifecycle"]))
	role.Tags = stringList(galaxy["galaxy_tags"])

	doc, summary, warnings := l.loadPricing(roleDir, id, galaxy)
	role.Pricing = doc
	role.Summary = summary
	role.Warnings = append(role.Warnings, warnings...)
	return role
}

// loadPricing resolves and normalizes the role's pricing document,
// falling back to the implicit document when the file is absent or
// invalid.
func (l *Loader) loadPricing(roleDir, id string, galaxy map[string]interface{}) (*types.PricingDocument, *types.Summary, []string) {
	path := pricingFile(roleDir, galaxy)

	implicit := func(warnings []string) (*types.PricingDocument, *types.Summary, []string) {
		doc := pricing.ImplicitDocument(id)
		summary := pricing.BuildSummary(doc, true)
		return doc, &summary, warnings
	}

	if _, err := os.Stat(path); err != nil {
		return implicit(nil)
	}

	raw, err := readYAMLFile(path)
	if err != nil {
		return implicit([]string{fmt.Sprintf("pricing metadata ignored: %v", err)})
	}
	doc, err := pricing.NormalizeDocument(raw)
	if err != nil {
		return implicit([]string{fmt.Sprintf("pricing metadata ignored: %v", err)})
	}
	summary := pricing.BuildSummary(doc, false)
	return doc, &summary, nil
}

// pricingFile returns the pricing document path for a role. The
// default meta/pricing.yml can be overridden via galaxy_info.pricing
// .file, but the override must stay inside the role directory.
func pricingFile(roleDir string, galaxy map[string]interface{}) string {
	defaultPath := filepath.Join(roleDir, "meta", "pricing.yml")

	name := cleanString(asMap(galaxy["pricing"])["file"])
	if name == "" {
		return defaultPath
	}
	resolved := filepath.Clean(filepath.Join(roleDir, name))
	rel, err := filepath.Rel(roleDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return defaultPath
	}
	return resolved
}

// loadBundles walks <dir>/<target>/<slug>/inventory.yml. Unreadable
// inventories are skipped; a missing directory yields no bundles.
func (l *Loader) loadBundles(dir string) []types.Bundle {
	var inventories []string
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && info.Name() == "inventory.yml" {
			inventories = append(inventories, path)
		}
		return nil
	})
	sort.Strings(inventories)

	var bundles []types.Bundle
	for _, path := range inventories {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			// Expected <target>/<slug>/inventory.yml
			continue
		}
		target := normalizeTarget(parts[0])
		slug := strings.TrimSpace(parts[1])
		if slug == "" {
			continue
		}

		data, err := readYAMLFile(path)
		if err != nil {
			continue
		}
		all := asMap(data["all"])
		if len(all) == 0 {
			continue
		}
		meta := asMap(asMap(asMap(all["vars"])["catalog"])["bundle"])

		title := cleanString(meta["title"])
		if title == "" {
			title = titleize(slug)
		}

		roleSet := map[string]struct{}{}
		for child := range asMap(all["children"]) {
			if rid := strings.TrimSpace(child); rid != "" {
				roleSet[rid] = struct{}{}
			}
		}
		roleIDs := make([]string, 0, len(roleSet))
		for rid := range roleSet {
			roleIDs = append(roleIDs, rid)
		}
		sort.Strings(roleIDs)

		bundles = append(bundles, types.Bundle{
			ID:           target.String() + "/" + slug,
			Slug:         slug,
			DeployTarget: target,
			Title:        title,
			Description:  cleanString(meta["description"]),
			Tags:         stringList(meta["tags"]),
			Categories:   stringList(meta["categories"]),
			RoleIDs:      roleIDs,
		})
	}
	return bundles
}

// loadCategories reads the optional category mapping file:
// category name -> list of role IDs. Failures are non-fatal and yield
// an empty mapping.
func loadCategories(path string) map[string][]string {
	out := map[string][]string{}
	raw, err := readYAMLFile(path)
	if err != nil {
		return out
	}

	seen := map[string]map[string]struct{}{}
	for category, rolesRaw := range raw {
		name := strings.TrimSpace(category)
		if name == "" {
			continue
		}
		for _, roleID := range stringList(rolesRaw) {
			key := strings.ToLower(name)
			if seen[roleID] == nil {
				seen[roleID] = map[string]struct{}{}
			}
			if _, dup := seen[roleID][key]; dup {
				continue
			}
			seen[roleID][key] = struct{}{}
			out[roleID] = append(out[roleID], name)
		}
	}
	for roleID := range out {
		sort.Strings(out[roleID])
	}
	return out
}

func readYAMLFile(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%s: root must be a mapping", filepath.Base(path))
	}
	return out, nil
}

func asMap(value interface{}) map[string]interface{} {
	if m, ok := value.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func cleanString(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", value))
}

// stringList coerces a YAML list into trimmed strings, dropping
// blanks and duplicates while keeping first positions.
func stringList(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, item := range items {
		text := cleanString(item)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

func normalizeStatus(raw string) types.RoleStatus {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.ReplaceAll(v, "_", "-")
	v = strings.ReplaceAll(v, " ", "-")
	return types.RoleStatus(v)
}

func normalizeTarget(raw string) types.DeployTarget {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "server", "servers":
		return types.TargetServer
	case "workstation", "workstations":
		return types.TargetWorkstation
	case "":
		return types.TargetServer
	default:
		return types.DeployTarget(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// titleize turns a slug like "web-app-files" into "Web App Files"
func titleize(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
