package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ResumeQuestionsKey returns the cache key for questions generated from a
// resume, keyed by the blake2b hash of the document content.
func (r *CacheKeyStruct) ResumeQuestionsKey(docHash string) string {
	return fmt.Sprintf("resume:%s:questions", docHash)
}

// SubjectQuizKey returns the cache key for a generated quiz on a subject.
func (r *CacheKeyStruct) SubjectQuizKey(subjectSlug string) string {
	return fmt.Sprintf("subject:%s:quiz", subjectSlug)
}

var CacheKey = NewCacheKeyStruct()
