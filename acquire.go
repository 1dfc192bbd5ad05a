// Copyright 2025 The WASIX Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"resty.dev/v3"
)

const (
	githubAPIBaseURL = "https://api.github.com"
	sysrootRepo      = "wasix-org/wasix-libc"
	llvmRepo         = "wasix-org/llvm-project"
	binaryenRepo     = "WebAssembly/binaryen"

	installManifestName = "install.yaml"
)

var sysrootAssetNames = []string{"sysroot.tar.gz", "sysroot-eh.tar.gz", "sysroot-ehpic.tar.gz"}

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
}

// installManifest is written next to every installed resource.
type installManifest struct {
	Repository  string    `yaml:"repository"`
	Tag         string    `yaml:"tag"`
	Assets      []string  `yaml:"assets"`
	InstalledAt time.Time `yaml:"installed_at"`
}

// githubAcquirer installs sysroots and toolchains from GitHub releases.
type githubAcquirer struct {
	client     *resty.Client
	apiBaseURL string
	goos       string
	goarch     string
	progress   io.Writer

	sysrootPrefix    string
	llvmLocation     string
	binaryenLocation string
}

var _ acquirer = (*githubAcquirer)(nil)

func newGithubAcquirer(env env, cfg *effectiveConfig) *githubAcquirer {
	client := resty.New().
		SetHeader("User-Agent", "wasixcc").
		SetHeader("Accept", "application/vnd.github+json")
	if token, ok := env.getenv("GITHUB_TOKEN"); ok && strings.TrimSpace(token) != "" {
		client.SetAuthToken(strings.TrimSpace(token))
	}
	return &githubAcquirer{
		client:           client,
		apiBaseURL:       githubAPIBaseURL,
		goos:             runtime.GOOS,
		goarch:           runtime.GOARCH,
		progress:         env.stderr(),
		sysrootPrefix:    cfg.str(optSysrootPrefix),
		llvmLocation:     cfg.str(optLlvmLocation),
		binaryenLocation: cfg.str(optBinaryenLocation),
	}
}

// Adapts the constructor to newAcquirerFunc.
func newWrapperAcquirer(env env, cfg *effectiveConfig) acquirer {
	return newGithubAcquirer(env, cfg)
}

func (a *githubAcquirer) close() {
	a.client.Close()
}

func (a *githubAcquirer) acquire(kind resourceKind, tag string) (string, error) {
	if kind == toolchainResource {
		return a.downloadLLVM(tag)
	}
	return a.downloadSysroot(tag)
}

// Returns the release path segment for a tag: "latest" or "tags/<tag>".
func releasePathForTag(tag string) (string, error) {
	switch {
	case tag == "" || tag == "latest":
		return "latest", nil
	case strings.HasPrefix(tag, "v"), strings.HasPrefix(tag, "version_"):
		return "tags/" + tag, nil
	}
	return "", newUserErrorf(invalidOptionValueError,
		"invalid tag %q, use 'latest', a tag starting with 'v', or 'version_XXX'", tag)
}

func llvmAssetName(goos, goarch string) (string, error) {
	osName := map[string]string{"linux": "Linux", "darwin": "MacOS"}[goos]
	archName := map[string]string{"amd64": "x86_64", "arm64": "aarch64"}[goarch]
	if osName == "" || archName == "" {
		return "", fmt.Errorf("LLVM download for %s on %s is not supported", goos, goarch)
	}
	return fmt.Sprintf("LLVM-%s-%s.tar.gz", osName, archName), nil
}

func binaryenAssetSuffix(goos, goarch string) (string, error) {
	switch goos + "/" + goarch {
	case "linux/amd64":
		return "-x86_64-linux.tar.gz", nil
	case "linux/arm64":
		return "-aarch64-linux.tar.gz", nil
	case "darwin/amd64":
		return "-x86_64-macos.tar.gz", nil
	case "darwin/arm64":
		return "-arm64-macos.tar.gz", nil
	}
	return "", fmt.Errorf("binaryen download for %s on %s is not supported", goos, goarch)
}

func (a *githubAcquirer) fetchRelease(repo, tag string) (*githubRelease, error) {
	releasePath, err := releasePathForTag(tag)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/repos/%s/releases/%s", a.apiBaseURL, repo, releasePath)
	fmt.Fprintf(a.progress, "Retrieving release info from %s ...\n", url)

	release := &githubRelease{}
	res, err := a.client.R().SetResult(release).Get(url)
	if err != nil {
		return nil, fmt.Errorf("could not download release info: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("could not download release info: %s returned %s", url, res.Status())
	}
	return release, nil
}

func (release *githubRelease) findAsset(match func(name string) bool) (*githubAsset, bool) {
	for i := range release.Assets {
		if match(release.Assets[i].Name) {
			return &release.Assets[i], true
		}
	}
	return nil, false
}

func (a *githubAcquirer) downloadAndExtract(asset *githubAsset, dest string) error {
	fmt.Fprintf(a.progress, "Downloading asset '%s' from url '%s'...\n", asset.Name, asset.URL)
	Logger().Info("downloading asset", zap.String("asset", asset.Name), zap.String("dest", dest))
	res, err := a.client.R().SetDoNotParseResponse(true).Get(asset.URL)
	if err != nil {
		return fmt.Errorf("download %s: %w", asset.Name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("download %s: %s", asset.Name, res.Status())
	}
	return extractArchive(res.Body, asset.Name, dest)
}

// downloadSysroot installs all three sysroot flavours of a release under
// the sysroot prefix.
func (a *githubAcquirer) downloadSysroot(tag string) (string, error) {
	release, err := a.fetchRelease(sysrootRepo, tag)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.sysrootPrefix, 0o755); err != nil {
		return "", fmt.Errorf("create sysroot prefix: %w", err)
	}
	for _, assetName := range sysrootAssetNames {
		asset, ok := release.findAsset(func(name string) bool { return name == assetName })
		if !ok {
			return "", fmt.Errorf("could not find asset '%s' in release %s", assetName, release.TagName)
		}
		if err := a.installSysrootAsset(asset); err != nil {
			return "", fmt.Errorf("install sysroot asset '%s': %w", assetName, err)
		}
	}
	manifest := installManifest{Repository: sysrootRepo, Tag: release.TagName, Assets: sysrootAssetNames}
	if err := writeInstallManifest(a.sysrootPrefix, manifest); err != nil {
		return "", err
	}
	return a.sysrootPrefix, nil
}

// A sysroot archive holds one wasix-sysroot<postfix>/sysroot directory,
// which becomes <prefix>/sysroot<postfix>.
func (a *githubAcquirer) installSysrootAsset(asset *githubAsset) error {
	// Unpacking next to the destination keeps the final rename on one
	// filesystem.
	tempDir, err := os.MkdirTemp(a.sysrootPrefix, ".download-")
	if err != nil {
		return fmt.Errorf("create temporary directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := a.downloadAndExtract(asset, tempDir); err != nil {
		return err
	}
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("read unpacked asset: %w", err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return fmt.Errorf("expected exactly one directory in unpacked asset, found %d entries", len(entries))
	}
	postfix, ok := strings.CutPrefix(entries[0].Name(), "wasix-sysroot")
	if !ok {
		return fmt.Errorf("expected unpacked asset directory to start with 'wasix-sysroot', found %s", entries[0].Name())
	}

	finalDir := filepath.Join(a.sysrootPrefix, "sysroot"+postfix)
	if err := os.RemoveAll(finalDir); err != nil {
		return fmt.Errorf("remove existing sysroot at %s: %w", finalDir, err)
	}
	if err := os.Rename(filepath.Join(tempDir, entries[0].Name(), "sysroot"), finalDir); err != nil {
		return fmt.Errorf("move sysroot to %s: %w", finalDir, err)
	}
	fmt.Fprintf(a.progress, "Downloaded sysroot asset '%s' to '%s'\n", asset.Name, finalDir)
	return nil
}

func (a *githubAcquirer) downloadLLVM(tag string) (string, error) {
	assetName, err := llvmAssetName(a.goos, a.goarch)
	if err != nil {
		return "", err
	}
	release, err := a.fetchRelease(llvmRepo, tag)
	if err != nil {
		return "", err
	}
	asset, ok := release.findAsset(func(name string) bool { return name == assetName })
	if !ok {
		return "", fmt.Errorf("could not find asset '%s' in release %s", assetName, release.TagName)
	}
	if err := a.downloadAndExtract(asset, a.llvmLocation); err != nil {
		return "", err
	}
	if err := makeExecutable(filepath.Join(a.llvmLocation, "bin")); err != nil {
		return "", err
	}
	manifest := installManifest{Repository: llvmRepo, Tag: release.TagName, Assets: []string{assetName}}
	if err := writeInstallManifest(a.llvmLocation, manifest); err != nil {
		return "", err
	}
	fmt.Fprintf(a.progress, "Downloaded LLVM asset '%s' to '%s'\n", asset.Name, a.llvmLocation)
	return a.llvmLocation, nil
}

// Binaryen archives hold a single binaryen-version_<N> directory whose
// contents go into BINARYEN_LOCATION.
func (a *githubAcquirer) downloadBinaryen(tag string) (string, error) {
	if a.binaryenLocation == "" {
		return "", newUserErrorf(missingResourceError, "%sBINARYEN_LOCATION must be set to download binaryen", envPrefix)
	}
	suffix, err := binaryenAssetSuffix(a.goos, a.goarch)
	if err != nil {
		return "", err
	}
	release, err := a.fetchRelease(binaryenRepo, tag)
	if err != nil {
		return "", err
	}
	asset, ok := release.findAsset(func(name string) bool { return strings.HasSuffix(name, suffix) })
	if !ok {
		return "", fmt.Errorf("could not find binaryen asset for %s/%s in release %s", a.goos, a.goarch, release.TagName)
	}

	if err := os.MkdirAll(a.binaryenLocation, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", a.binaryenLocation, err)
	}
	tempDir, err := os.MkdirTemp(a.binaryenLocation, ".download-")
	if err != nil {
		return "", fmt.Errorf("create temporary directory: %w", err)
	}
	defer os.RemoveAll(tempDir)
	if err := a.downloadAndExtract(asset, tempDir); err != nil {
		return "", err
	}
	unpacked, err := filepath.Glob(filepath.Join(tempDir, "binaryen-version_*"))
	if err != nil || len(unpacked) != 1 {
		return "", fmt.Errorf("expected one binaryen-version_* directory in %s", asset.Name)
	}
	entries, err := os.ReadDir(unpacked[0])
	if err != nil {
		return "", fmt.Errorf("read unpacked asset: %w", err)
	}
	for _, entry := range entries {
		dest := filepath.Join(a.binaryenLocation, entry.Name())
		os.RemoveAll(dest)
		if err := os.Rename(filepath.Join(unpacked[0], entry.Name()), dest); err != nil {
			return "", fmt.Errorf("move %s: %w", entry.Name(), err)
		}
	}
	if err := makeExecutable(filepath.Join(a.binaryenLocation, "bin")); err != nil {
		return "", err
	}
	manifest := installManifest{Repository: binaryenRepo, Tag: release.TagName, Assets: []string{asset.Name}}
	if err := writeInstallManifest(a.binaryenLocation, manifest); err != nil {
		return "", err
	}
	fmt.Fprintf(a.progress, "Downloaded binaryen asset '%s' to '%s'\n", asset.Name, a.binaryenLocation)
	return a.binaryenLocation, nil
}

func makeExecutable(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := os.Chmod(filepath.Join(dir, entry.Name()), info.Mode().Perm()|0o110); err != nil {
			return fmt.Errorf("chmod %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func writeInstallManifest(dir string, manifest installManifest) error {
	manifest.InstalledAt = time.Now().UTC()
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal install manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, installManifestName), data, 0o644); err != nil {
		return fmt.Errorf("write install manifest: %w", err)
	}
	return nil
}

func readInstallManifest(dir string) (*installManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, installManifestName))
	if err != nil {
		return nil, err
	}
	manifest := &installManifest{}
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", installManifestName, err)
	}
	return manifest, nil
}
