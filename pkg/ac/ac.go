package ac

import (
	"bytes"
	"strings"

	ahocorasick "github.com/anknown/ahocorasick"
)

// ac 封装Aho-Corasick多模式串匹配
// 每个词典持有独立的自动机, 情感词典/意图词典/升级短语词典互不干扰

type Matcher struct {
	m    *ahocorasick.Machine
	dict []string
}

// readRunes 将字符串字典转换为rune切片数组, 用于Aho-Corasick算法的输入格式要求
func readRunes(dict []string) (runes [][]rune) {
	for _, word := range dict {
		word = strings.ToLower(word)          // 转换为小写, 实现大小写不敏感匹配
		l := bytes.TrimSpace([]byte(word))    // 去除前后空白字符
		runes = append(runes, bytes.Runes(l)) // 将字符串转换为rune切片, 支持中文等多字节字符
	}
	return runes
}

// NewMatcher 根据关键词字典构建自动机
func NewMatcher(dict []string) (*Matcher, error) {
	m := new(ahocorasick.Machine)
	if err := m.Build(readRunes(dict)); err != nil {
		return nil, err
	}
	return &Matcher{m: m, dict: dict}, nil
}

// MustMatcher 构建失败时panic, 用于静态词典
func MustMatcher(dict []string) *Matcher {
	m, err := NewMatcher(dict)
	if err != nil {
		panic(err)
	}
	return m
}

// Search 在文本中搜索词典命中
// stopImmediately为true时找到第一个匹配就停止
// 返回是否命中以及命中的关键词列表
func (a *Matcher) Search(findText string, stopImmediately bool) (bool, []string) {
	if a == nil || len(a.dict) == 0 || len(findText) == 0 {
		return false, nil
	}

	hits := a.m.MultiPatternSearch([]rune(strings.ToLower(findText)), stopImmediately)
	if len(hits) == 0 {
		return false, nil
	}
	words := make([]string, 0, len(hits))
	for _, hit := range hits {
		words = append(words, string(hit.Word))
	}
	return true, words
}

// Count 返回文本中词典命中的总次数
func (a *Matcher) Count(findText string) int {
	ok, words := a.Search(findText, false)
	if !ok {
		return 0
	}
	return len(words)
}
