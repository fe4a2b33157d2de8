package quran

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerseDTO_Parsing(t *testing.T) {
	jsonData := `{
    "verses": [
        {
            "id": 1,
            "verse_number": 1,
            "verse_key": "1:1",
            "text_uthmani": "بِسْمِ ٱللَّهِ ٱلرَّحْمَـٰنِ ٱلرَّحِيمِ",
            "words": [
                {
                    "id": 1,
                    "position": 1,
                    "char_type_name": "word",
                    "text_uthmani": "بِسْمِ",
                    "transliteration": {"text": "bis'mi", "language_name": "english"},
                    "translation": {"text": "In (the) name", "language_name": "english"}
                },
                {
                    "id": 2,
                    "position": 2,
                    "char_type_name": "word",
                    "text_uthmani": "ٱللَّهِ",
                    "transliteration": {"text": "l-lahi", "language_name": "english"},
                    "translation": {"text": "(of) Allah", "language_name": "english"}
                },
                {
                    "id": 5,
                    "position": 5,
                    "char_type_name": "end",
                    "text_uthmani": "١"
                }
            ],
            "translations": [
                {"resource_id": 85, "text": "In the Name of Allah—the Most Compassionate, Most Merciful."}
            ]
        }
    ],
    "pagination": {
        "per_page": 50,
        "current_page": 1,
        "next_page": null,
        "total_pages": 1,
        "total_records": 7
    }
}`

	var response VersesResponseDTO
	err := json.Unmarshal([]byte(jsonData), &response)
	assert.NoError(t, err)

	assert.Len(t, response.Verses, 1)
	verse := response.Verses[0]
	assert.Equal(t, 1, verse.ID)
	assert.Equal(t, "1:1", verse.VerseKey)
	assert.Len(t, verse.Words, 3)
	assert.Equal(t, "word", verse.Words[0].CharTypeName)
	assert.Equal(t, "bis'mi", verse.Words[0].Transliteration.Text)
	assert.Len(t, verse.Translations, 1)
	assert.Equal(t, 85, verse.Translations[0].ResourceID)

	assert.NotNil(t, response.Pagination)
	assert.Nil(t, response.Pagination.NextPage)
	assert.Equal(t, 7, response.Pagination.TotalRecords)
}

func TestChapterDTO_Parsing(t *testing.T) {
	jsonData := `{
    "chapters": [
        {
            "id": 1,
            "revelation_place": "makkah",
            "name_simple": "Al-Fatihah",
            "name_arabic": "الفاتحة",
            "verses_count": 7,
            "translated_name": {"name": "The Opener", "language_name": "english"}
        }
    ]
}`

	var response ChaptersResponseDTO
	err := json.Unmarshal([]byte(jsonData), &response)
	assert.NoError(t, err)

	assert.Len(t, response.Chapters, 1)
	chapter := response.Chapters[0]
	assert.Equal(t, 1, chapter.ID)
	assert.Equal(t, "Al-Fatihah", chapter.NameSimple)
	assert.Equal(t, "makkah", chapter.RevelationPlace)
	assert.Equal(t, "The Opener", chapter.TranslatedName.Name)
}

func TestMapper_SurahFromChapter(t *testing.T) {
	mapper := NewMapper()

	surah := mapper.SurahFromChapter(ChapterDTO{
		ID:              112,
		RevelationPlace: "makkah",
		NameSimple:      "Al-Ikhlas",
		NameArabic:      "الإخلاص",
		VersesCount:     4,
		TranslatedName:  TranslatedNameDTO{Name: "The Sincerity"},
	})

	assert.Equal(t, 112, surah.Number)
	assert.Equal(t, "Al-Ikhlas", surah.NameSimple)
	assert.Equal(t, "The Sincerity", surah.NameTranslated)
	assert.Equal(t, 4, surah.VerseCount)
	assert.Equal(t, "makkah", surah.RevelationPlace)
}

func TestMapper_VerseFromDTO(t *testing.T) {
	mapper := NewMapper()

	dto := VerseDTO{
		ID:          262,
		VerseNumber: 255,
		VerseKey:    "2:255",
		TextUthmani: "text",
		Words: []WordDTO{
			{ID: 1, Position: 1, CharTypeName: "word"},
			{ID: 2, Position: 2, CharTypeName: "word"},
			{ID: 3, Position: 3, CharTypeName: "end"},
		},
		Translations: []TranslationDTO{
			{ResourceID: 85, Text: `Allah! There is no god worthy of worship except Him.<sup foot_note=76373>1</sup>`},
		},
	}

	verse, err := mapper.VerseFromDTO(dto)
	assert.NoError(t, err)
	assert.Equal(t, 262, verse.ID)
	assert.Equal(t, 2, verse.SurahNumber)
	assert.Equal(t, 255, verse.VerseNumber)
	assert.Equal(t, 2, verse.WordCount)
	assert.Equal(t, "Allah! There is no god worthy of worship except Him.", verse.Translation)
}

func TestMapper_VerseFromDTO_InvalidKey(t *testing.T) {
	mapper := NewMapper()

	_, err := mapper.VerseFromDTO(VerseDTO{ID: 1, VerseKey: "not-a-key"})
	assert.Error(t, err)

	_, err = mapper.VerseFromDTO(VerseDTO{ID: 1, VerseKey: "115:1"})
	assert.Error(t, err)
}

func TestMapper_WordsFromVerse(t *testing.T) {
	mapper := NewMapper()

	dto := VerseDTO{
		ID: 262,
		Words: []WordDTO{
			{
				ID:              10,
				Position:        1,
				CharTypeName:    "word",
				TextUthmani:     "ٱللَّهُ",
				Transliteration: &WordTranslationDTO{Text: "al-lahu"},
				Translation:     &WordTranslationDTO{Text: "Allah"},
			},
			{ID: 11, Position: 2, CharTypeName: "end", TextUthmani: "٢٥٥"},
		},
	}

	words := mapper.WordsFromVerse(dto)
	assert.Len(t, words, 1)
	assert.Equal(t, 10, words[0].ID)
	assert.Equal(t, 262, words[0].VerseID)
	assert.Equal(t, 1, words[0].Position)
	assert.Equal(t, "al-lahu", words[0].Transliteration)
	assert.Equal(t, "Allah", words[0].Translation)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "plain text", stripMarkup("plain text"))
	assert.Equal(t, "before after", stripMarkup("before<sup foot_note=1>2</sup> after"))
	assert.Equal(t, "bold", stripMarkup("<b>bold</b>"))
}
