package parser

import (
	"annotcheck/internal/core/errors"
	"annotcheck/internal/shared/observability"
	"annotcheck/internal/shared/util"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
	pools      map[string]*ParserPool
	extensions map[string]string
	filenames  map[string]string
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
		pools:      make(map[string]*ParserPool),
		extensions: make(map[string]string),
		filenames:  make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		for _, name := range spec.Filenames {
			p.filenames[strings.ToLower(path.Base(name))] = lang
		}
		if grammar := loader.Language(lang); grammar != nil {
			p.pools[lang] = NewParserPool(grammar)
		}
	}
	return p
}

// RegisterExtractor must be called before the parser is shared between goroutines.
func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

func (p *Parser) RegisterDefaultExtractors() error {
	for lang, spec := range p.loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		switch lang {
		case "php":
			p.RegisterExtractor(lang, &PHPExtractor{})
		default:
			return errors.New(errors.CodeNotSupported, fmt.Sprintf("no default extractor for enabled language: %s", lang))
		}
	}
	return nil
}

// ParseFile is safe for concurrent use once extractors are registered.
func (p *Parser) ParseFile(filePath string, content []byte) (*File, error) {
	lang := p.detectLanguage(filePath)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, filePath)
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "no extractor registered"), errors.CtxLanguage, lang)
	}

	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "grammar not loaded"), errors.CtxLanguage, lang)
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, filePath)
	}
	defer tree.Close()

	res, err := extractor.Extract(tree.RootNode(), content, filePath)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "extraction failed"), errors.CtxPath, filePath)
	}
	res.Language = lang
	observability.FilesParsedTotal.WithLabelValues(lang).Inc()
	return res, nil
}

func (p *Parser) detectLanguage(filePath string) string {
	base := strings.ToLower(filepath.Base(filePath))
	if lang, ok := p.filenames[base]; ok {
		return lang
	}
	ext := strings.ToLower(filepath.Ext(filePath))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.detectLanguage(filePath) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}

func (p *Parser) SupportedFilenames() []string {
	return util.SortedStringKeys(p.filenames)
}
