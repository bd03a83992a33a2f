package template

// builtinTemplates are the newsletter layouts shipped with the application.
// Custom templates registered under the same names take precedence.
var builtinTemplates = map[string]string{
	"default":  defaultTemplate,
	"minimal":  minimalTemplate,
	"magazine": magazineTemplate,
}

const defaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{options.header_text}}</title>
    <style>
        body { margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: {{options.background_color}}; line-height: 1.6; }
        .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; box-shadow: 0 0 10px rgba(0,0,0,0.1); }
        .header { background-color: {{options.brand_color}}; color: white; padding: 20px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 20px; }
        .post-item { margin-bottom: 30px; border-bottom: 1px solid #eee; padding-bottom: 20px; }
        .post-item:last-child { border-bottom: none; }
        .post-image { width: 100%; height: 200px; object-fit: cover; border-radius: 5px; margin-bottom: 15px; }
        .post-title { font-size: 20px; font-weight: bold; margin: 0 0 10px 0; color: #333; }
        .post-title a { color: {{options.brand_color}}; text-decoration: none; }
        .post-description { color: #666; font-size: 14px; margin-bottom: 10px; }
        .post-meta { font-size: 12px; color: #999; margin-bottom: 15px; }
        .read-more { display: inline-block; background-color: {{options.brand_color}}; color: white; padding: 8px 16px; text-decoration: none; border-radius: 3px; font-size: 14px; }
        .footer { background-color: #f8f9fa; padding: 20px; text-align: center; font-size: 12px; color: #666; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            {{#if site_info.logo_url}}
            <img src="{{site_info.logo_url}}" alt="{{site_info.name}}" style="max-height: 40px; margin-bottom: 10px;">
            {{/if}}
            <h1>{{options.header_text}}</h1>
        </div>

        <div class="content">
            {{#each posts}}
            <div class="post-item">
                {{#if featured_image.url}}
                <img src="{{featured_image.url}}" alt="{{featured_image.alt}}" class="post-image">
                {{/if}}

                <h2 class="post-title">
                    <a href="{{permalink}}">{{title}}</a>
                </h2>

                <div class="post-meta">
                    {{date}}
                </div>

                {{#if custom_description}}
                <div class="post-description">{{custom_description}}</div>
                {{/if}}

                <a href="{{permalink}}" class="read-more">Read More</a>
            </div>
            {{/each}}
        </div>

        <div class="footer">
            <p>{{options.footer_text}}</p>
            {{#if options.include_social_links}}
            <p>
                {{#each social_links}}
                <a href="{{url}}">{{name}}</a>{{#unless @last}} &middot; {{/unless}}
                {{/each}}
            </p>
            {{/if}}
            {{#if options.include_unsubscribe}}
            <p><a href="[unsubscribe]">Unsubscribe</a> | <a href="[webversion]">View in Browser</a></p>
            {{/if}}
            <p><small>{{site_info.name}} &bull; {{site_info.url}}</small></p>
        </div>
    </div>
</body>
</html>`

const minimalTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{options.header_text}}</title>
    <style>
        body { margin: 0; padding: 0; font-family: Georgia, serif; background-color: {{options.background_color}}; }
        .container { max-width: 560px; margin: 0 auto; padding: 24px; background-color: #ffffff; }
        h1 { font-size: 22px; border-bottom: 2px solid {{options.brand_color}}; padding-bottom: 8px; }
        .post { margin-bottom: 24px; }
        .post h2 { font-size: 17px; margin: 0 0 6px 0; }
        .post h2 a { color: {{options.brand_color}}; text-decoration: none; }
        .post p { margin: 0; font-size: 14px; color: #444; }
        .footer { margin-top: 32px; font-size: 12px; color: #888; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{options.header_text}}</h1>
        {{#each posts}}
        <div class="post">
            <h2><a href="{{permalink}}">{{title}}</a></h2>
            {{#if custom_description}}<p>{{custom_description}}</p>{{/if}}
        </div>
        {{/each}}
        <div class="footer">
            <p>{{options.footer_text}}</p>
            {{#if options.include_unsubscribe}}
            <p><a href="[unsubscribe]">Unsubscribe</a></p>
            {{/if}}
            <p>{{site_info.name}}</p>
        </div>
    </div>
</body>
</html>`

const magazineTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{options.header_text}}</title>
    <style>
        body { margin: 0; padding: 0; font-family: Helvetica, Arial, sans-serif; background-color: {{options.background_color}}; }
        .container { max-width: 640px; margin: 0 auto; background-color: #ffffff; }
        .masthead { padding: 28px 24px; border-bottom: 4px solid {{options.brand_color}}; }
        .masthead h1 { margin: 0; font-size: 28px; letter-spacing: 1px; text-transform: uppercase; }
        .lead { padding: 24px; }
        .lead img { width: 100%; border-radius: 4px; }
        .lead h2 { font-size: 24px; margin: 12px 0 8px 0; }
        .lead h2 a { color: #111; text-decoration: none; }
        .lead p { color: #555; font-size: 15px; }
        .grid-item { padding: 0 24px 24px 24px; }
        .grid-item h3 { font-size: 17px; margin: 0 0 6px 0; }
        .grid-item h3 a { color: {{options.brand_color}}; text-decoration: none; }
        .grid-item p { margin: 0; font-size: 13px; color: #666; }
        .footer { background-color: #111; color: #aaa; padding: 20px 24px; font-size: 12px; text-align: center; }
        .footer a { color: #ddd; }
    </style>
</head>
<body>
    <div class="container">
        <div class="masthead">
            <h1>{{options.header_text}}</h1>
        </div>
        {{#each posts}}
        {{#if @first}}
        <div class="lead">
            {{#if featured_image.url}}
            <img src="{{featured_image.url}}" alt="{{featured_image.alt}}">
            {{/if}}
            <h2><a href="{{permalink}}">{{title}}</a></h2>
            {{#if custom_description}}<p>{{custom_description}}</p>{{/if}}
        </div>
        {{/if}}
        {{#unless @first}}
        <div class="grid-item">
            <h3><a href="{{permalink}}">{{title}}</a></h3>
            {{#if custom_description}}<p>{{custom_description}}</p>{{/if}}
        </div>
        {{/unless}}
        {{/each}}
        <div class="footer">
            <p>{{options.footer_text}}</p>
            {{#if options.include_unsubscribe}}
            <p><a href="[unsubscribe]">Unsubscribe</a> | <a href="[webversion]">View in Browser</a></p>
            {{/if}}
            <p>{{site_info.name}} &bull; {{site_info.url}}</p>
        </div>
    </div>
</body>
</html>`
