// builtin.go — Templates seeded into every Engine at construction.
// User registrations with the same id shadow these.
package template

var builtinTemplates = []Template{
	{
		ID:        "playwright-config",
		Name:      "Playwright configuration",
		Category:  CategoryConfig,
		Framework: "playwright",
		Language:  "typescript",
		Content: `import { defineConfig } from '@playwright/test';

export default defineConfig({
  testDir: './tests',
  use: {
{{#if baseURL}}    baseURL: '{{baseURL}}',
{{/if}}    headless: {{#if headless}}true{{else}}false{{/if}},
    viewport: { width: {{viewport.width}}, height: {{viewport.height}} },
  },
});
`,
		Placeholders: []Placeholder{
			{Key: "viewport.width", Type: "number", Required: true},
			{Key: "viewport.height", Type: "number", Required: true},
			{Key: "baseURL", Type: "string"},
			{Key: "headless", Type: "boolean"},
		},
	},
	{
		ID:        "cypress-config",
		Name:      "Cypress configuration",
		Category:  CategoryConfig,
		Framework: "cypress",
		Language:  "javascript",
		Content: `const { defineConfig } = require('cypress');

module.exports = defineConfig({
  e2e: {
{{#if baseURL}}    baseUrl: '{{baseURL}}',
{{/if}}    viewportWidth: {{viewport.width}},
    viewportHeight: {{viewport.height}},
  },
});
`,
		Placeholders: []Placeholder{
			{Key: "viewport.width", Type: "number", Required: true},
			{Key: "viewport.height", Type: "number", Required: true},
			{Key: "baseURL", Type: "string"},
		},
	},
	{
		ID:        "puppeteer-config",
		Name:      "Jest configuration for Puppeteer suites",
		Category:  CategoryConfig,
		Framework: "puppeteer",
		Language:  "javascript",
		Content: `module.exports = {
  preset: 'jest-puppeteer',
  testMatch: ['**/*.test.js'],
  testTimeout: 30000,
};
`,
	},
	{
		ID:        "selenium-config",
		Name:      "pytest fixtures for Selenium suites",
		Category:  CategoryConfig,
		Framework: "selenium",
		Language:  "python",
		Content: `import pytest
from selenium import webdriver
from selenium.webdriver.chrome.options import Options


@pytest.fixture
def driver():
    options = Options()
{{#if headless}}    options.add_argument("--headless=new")
{{/if}}    options.add_argument("--window-size={{viewport.width}},{{viewport.height}}")
    driver = webdriver.Chrome(options=options)
    yield driver
    driver.quit()
`,
		Placeholders: []Placeholder{
			{Key: "viewport.width", Type: "number", Required: true},
			{Key: "viewport.height", Type: "number", Required: true},
			{Key: "headless", Type: "boolean"},
		},
	},
	{
		ID:        "page-object-ts",
		Name:      "TypeScript page object class",
		Category:  CategoryPageObject,
		Framework: "playwright",
		Language:  "typescript",
		Content: `import { Page } from '@playwright/test';

export class {{className}} {
  constructor(private readonly page: Page) {}

  async goto() {
    await this.page.goto('{{url}}');
  }
{{#each methods as method}}
  async {{method.name}}() {
{{method.body}}  }
{{/each}}}
`,
		Placeholders: []Placeholder{
			{Key: "className", Type: "string", Required: true, Validation: `^[A-Z][A-Za-z0-9]*$`},
			{Key: "url", Type: "string", Required: true},
			{Key: "methods", Type: "array"},
		},
	},
}
